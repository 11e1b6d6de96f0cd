package viewer

// ScrollSync mirrors scroll offsets between the two panes. The blocks of both
// panes start at equal offsets (Layout's minimum-height constraint), so
// copying the absolute pixel offset keeps corresponding blocks aligned.
type ScrollSync struct {
	offsets [2]int
	syncing bool
	apply   func(Pane, int)
}

// NewScrollSync creates a synchronizer. apply pushes a programmatic offset
// change into the rendering layer for the given pane; it may be nil. If the
// rendering layer echoes the change back through OnScroll, the re-entrancy
// guard swallows it, so one user event propagates at most once.
func NewScrollSync(apply func(Pane, int)) *ScrollSync {
	return &ScrollSync{apply: apply}
}

// OnScroll handles a scroll event observed on one pane, mirroring the offset
// to the other pane.
func (s *ScrollSync) OnScroll(pane Pane, offset int) {
	if s.syncing {
		return
	}
	s.syncing = true
	defer func() { s.syncing = false }()

	s.offsets[pane] = offset
	other := pane.other()
	s.offsets[other] = offset
	if s.apply != nil {
		s.apply(other, offset)
	}
}

// Offset returns the current scroll offset of a pane.
func (s *ScrollSync) Offset(pane Pane) int {
	return s.offsets[pane]
}

// Reset zeroes both offsets, for use when the panes are replaced on a new
// document load.
func (s *ScrollSync) Reset() {
	s.offsets = [2]int{}
}

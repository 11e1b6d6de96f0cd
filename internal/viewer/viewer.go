// Package viewer implements the two-pane synchronization engine: it holds the
// chunk sequence and the latest annotation per chunk, derives the global
// vocabulary dictionary, models the geometry of both panes so corresponding
// blocks start at equal offsets, and drives scroll mirroring and
// hover/tooltip interaction. The engine is independent of any rendering
// technology; a Measurer adapter supplies rendered heights and the rendering
// layer feeds pointer and scroll events in.
package viewer

// Chunk is one stable-identified, ordered slice of the loaded document.
type Chunk struct {
	ID   int
	Text string
}

// Pane identifies one of the two synchronized panes.
type Pane int

const (
	PaneSource Pane = iota
	PaneAnnotation
)

func (p Pane) other() Pane {
	if p == PaneSource {
		return PaneAnnotation
	}
	return PaneSource
}

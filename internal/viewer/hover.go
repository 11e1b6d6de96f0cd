package viewer

// tooltipOffset is the fixed distance in pixels between the pointer and the
// tooltip's top-left corner.
const tooltipOffset = 12

// Tooltip is the ephemeral definition popup state.
type Tooltip struct {
	Visible bool
	Text    string
	X, Y    int
}

// Hover tracks cross-highlight and tooltip state for both panes. Entering a
// chunk in either pane highlights the matching pair; entering a vocabulary
// span highlights every span with that key and, when the dictionary knows the
// key, shows a definition tooltip near the pointer.
type Hover struct {
	chunkID    int  // highlighted chunk pair, valid when chunkOK
	chunkOK    bool
	vocabKey   string // highlighted vocabulary key, "" when none
	tooltip    Tooltip
	definition func(key string) (string, bool)
}

// NewHover creates a hover controller. definition resolves a lowercase
// vocabulary key against the current dictionary.
func NewHover(definition func(key string) (string, bool)) *Hover {
	return &Hover{definition: definition}
}

// EnterChunk highlights the chunk with the given id in both panes.
func (h *Hover) EnterChunk(chunkID int) {
	h.chunkID = chunkID
	h.chunkOK = true
}

// LeaveChunk removes the chunk highlight.
func (h *Hover) LeaveChunk() {
	h.chunkOK = false
}

// HighlightedChunk returns the currently cross-highlighted chunk id.
func (h *Hover) HighlightedChunk() (int, bool) {
	return h.chunkID, h.chunkOK
}

// EnterVocab highlights every span carrying key and shows the definition
// tooltip near the pointer. A key absent from the dictionary still
// highlights, but shows no tooltip.
func (h *Hover) EnterVocab(key string, x, y int) {
	h.vocabKey = key
	if def, ok := h.definition(key); ok {
		h.tooltip = Tooltip{Visible: true, Text: def, X: x + tooltipOffset, Y: y + tooltipOffset}
	} else {
		h.tooltip = Tooltip{}
	}
}

// MovePointer repositions a visible tooltip; it is a no-op otherwise.
func (h *Hover) MovePointer(x, y int) {
	if !h.tooltip.Visible {
		return
	}
	h.tooltip.X = x + tooltipOffset
	h.tooltip.Y = y + tooltipOffset
}

// LeaveVocab removes the vocabulary highlight and hides the tooltip
// immediately.
func (h *Hover) LeaveVocab() {
	h.vocabKey = ""
	h.tooltip = Tooltip{}
}

// HighlightedVocab returns the currently highlighted vocabulary key, or ""
// when none is highlighted.
func (h *Hover) HighlightedVocab() string {
	return h.vocabKey
}

// TooltipState returns the current tooltip.
func (h *Hover) TooltipState() Tooltip {
	return h.tooltip
}

// Reset clears all hover state, for use on document reload.
func (h *Hover) Reset() {
	h.chunkOK = false
	h.vocabKey = ""
	h.tooltip = Tooltip{}
}

package viewer

import "testing"

func newTestHover(dict map[string]string) *Hover {
	return NewHover(func(key string) (string, bool) {
		def, ok := dict[key]
		return def, ok
	})
}

func TestHoverChunkHighlight(t *testing.T) {
	h := newTestHover(nil)

	h.EnterChunk(3)
	if id, ok := h.HighlightedChunk(); !ok || id != 3 {
		t.Errorf("highlighted = %d,%v; want 3,true", id, ok)
	}

	h.LeaveChunk()
	if _, ok := h.HighlightedChunk(); ok {
		t.Error("highlight should be cleared on leave")
	}
}

func TestVocabTooltipShown(t *testing.T) {
	h := newTestHover(map[string]string{"rickety": "shaky and unstable"})

	h.EnterVocab("rickety", 100, 200)

	if h.HighlightedVocab() != "rickety" {
		t.Errorf("highlighted vocab = %q", h.HighlightedVocab())
	}
	tip := h.TooltipState()
	if !tip.Visible {
		t.Fatal("tooltip should be visible")
	}
	if tip.Text != "shaky and unstable" {
		t.Errorf("tooltip text = %q", tip.Text)
	}
	if tip.X != 100+tooltipOffset || tip.Y != 200+tooltipOffset {
		t.Errorf("tooltip at (%d,%d), want pointer plus fixed offset", tip.X, tip.Y)
	}
}

func TestVocabTooltipFollowsPointer(t *testing.T) {
	h := newTestHover(map[string]string{"rickety": "shaky and unstable"})
	h.EnterVocab("rickety", 10, 10)

	h.MovePointer(50, 60)
	tip := h.TooltipState()
	if tip.X != 50+tooltipOffset || tip.Y != 60+tooltipOffset {
		t.Errorf("tooltip at (%d,%d) after move", tip.X, tip.Y)
	}
}

func TestVocabDictionaryMissShowsNoTooltip(t *testing.T) {
	h := newTestHover(map[string]string{})

	h.EnterVocab("rickety", 10, 10)

	if h.HighlightedVocab() != "rickety" {
		t.Error("span should highlight even without a definition")
	}
	if h.TooltipState().Visible {
		t.Error("no tooltip for a key missing from the dictionary")
	}

	// Pointer moves must not conjure a tooltip either.
	h.MovePointer(20, 20)
	if h.TooltipState().Visible {
		t.Error("tooltip appeared on move despite dictionary miss")
	}
}

func TestVocabLeaveHidesImmediately(t *testing.T) {
	h := newTestHover(map[string]string{"rickety": "shaky and unstable"})
	h.EnterVocab("rickety", 10, 10)

	h.LeaveVocab()

	if h.HighlightedVocab() != "" {
		t.Error("vocab highlight should clear on leave")
	}
	if h.TooltipState().Visible {
		t.Error("tooltip should hide immediately on leave")
	}
}

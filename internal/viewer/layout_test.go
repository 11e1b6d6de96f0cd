package viewer

import "testing"

// fakeMeasurer reports fixed heights keyed by chunk id.
type fakeMeasurer struct {
	para map[int]int
	ann  map[int]int
}

func (m *fakeMeasurer) ParagraphHeight(id int) (int, bool) {
	h, ok := m.para[id]
	return h, ok
}

func (m *fakeMeasurer) AnnotationHeight(id int) (int, bool) {
	h, ok := m.ann[id]
	return h, ok
}

func TestReflowOneEntryPerRenderedChunk(t *testing.T) {
	l := NewLayout()
	chunks := []Chunk{{ID: 1}, {ID: 2}, {ID: 3}}
	m := &fakeMeasurer{
		para: map[int]int{1: 100, 2: 80}, // chunk 3 not rendered
		ann:  map[int]int{1: 40, 2: 40},
	}

	l.Reflow(chunks, m)

	heights := l.Heights()
	if len(heights) != 2 {
		t.Fatalf("expected 2 geometry entries, got %d", len(heights))
	}
	if heights[1] != 100 || heights[2] != 80 {
		t.Errorf("unexpected heights: %v", heights)
	}
	if _, ok := heights[3]; ok {
		t.Error("unrendered chunk must have no geometry entry")
	}
}

func TestReflowMinimumHeightConstraint(t *testing.T) {
	l := NewLayout()
	chunks := []Chunk{{ID: 1}, {ID: 2}, {ID: 3}}
	m := &fakeMeasurer{
		para: map[int]int{1: 100, 2: 80, 3: 60},
		ann:  map[int]int{1: 30, 2: 120, 3: 60}, // 2's annotation is taller than its paragraph
	}

	l.Reflow(chunks, m)

	// Shorter annotation content is padded up to the paragraph height.
	if b, _ := l.AnnotationBox(1); b.Height != 100 {
		t.Errorf("annotation 1 height = %d, want padded to 100", b.Height)
	}
	// Taller annotation content grows the pane, never clipped.
	if b, _ := l.AnnotationBox(2); b.Height != 120 {
		t.Errorf("annotation 2 height = %d, want natural 120", b.Height)
	}
}

func TestReflowEqualTopOffsets(t *testing.T) {
	l := NewLayout()
	chunks := []Chunk{{ID: 1}, {ID: 2}, {ID: 3}}
	m := &fakeMeasurer{
		para: map[int]int{1: 100, 2: 80, 3: 60},
		ann:  map[int]int{1: 40, 2: 25, 3: 10}, // annotations all shorter
	}

	l.Reflow(chunks, m)

	for _, id := range []int{1, 2, 3} {
		src, _ := l.SourceBox(id)
		ann, _ := l.AnnotationBox(id)
		if src.Top != ann.Top {
			t.Errorf("chunk %d: source top %d != annotation top %d", id, src.Top, ann.Top)
		}
	}
}

func TestHitTest(t *testing.T) {
	l := NewLayout()
	chunks := []Chunk{{ID: 1}, {ID: 2}}
	m := &fakeMeasurer{
		para: map[int]int{1: 100, 2: 80},
		ann:  map[int]int{1: 100, 2: 80},
	}
	l.Reflow(chunks, m)

	cases := []struct {
		y    int
		want int
		ok   bool
	}{
		{0, 1, true},
		{99, 1, true},
		{100, 2, true},
		{179, 2, true},
		{180, 0, false},
	}
	for _, c := range cases {
		got, ok := l.HitTest(PaneSource, c.y)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("HitTest(%d) = %d,%v; want %d,%v", c.y, got, ok, c.want, c.ok)
		}
	}
}

func TestReflowReplacesStaleGeometry(t *testing.T) {
	l := NewLayout()
	m := &fakeMeasurer{para: map[int]int{1: 50}, ann: map[int]int{}}
	l.Reflow([]Chunk{{ID: 1}}, m)

	m2 := &fakeMeasurer{para: map[int]int{7: 30}, ann: map[int]int{}}
	l.Reflow([]Chunk{{ID: 7}}, m2)

	heights := l.Heights()
	if _, ok := heights[1]; ok {
		t.Error("stale entry for removed chunk survived a reflow")
	}
	if heights[7] != 30 {
		t.Errorf("expected new entry 7:30, got %v", heights)
	}
}

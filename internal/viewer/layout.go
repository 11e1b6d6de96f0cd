package viewer

// Box is the measured geometry of one rendered block: its offset from the top
// of its pane and its height, both in pixels.
type Box struct {
	Top    int
	Height int
}

// Measurer is the adapter between the engine and the rendering layer. It
// reports the natural rendered height of each block; ok is false for chunks
// the layer has not rendered.
type Measurer interface {
	ParagraphHeight(chunkID int) (px int, ok bool)
	AnnotationHeight(chunkID int) (px int, ok bool)
}

// Layout is the geometry model for both panes. Annotation blocks carry the
// matching paragraph height as a minimum, never a maximum: a taller
// annotation grows its pane, a shorter one leaves trailing blank space, and
// in the common case block i starts at the same offset in both panes.
type Layout struct {
	order      []int
	source     map[int]Box
	annotation map[int]Box
}

// NewLayout returns an empty layout.
func NewLayout() *Layout {
	return &Layout{
		source:     make(map[int]Box),
		annotation: make(map[int]Box),
	}
}

// Reflow remeasures every rendered chunk and rebuilds both panes' geometry
// from scratch. Chunks the measurer does not report are left out entirely.
func (l *Layout) Reflow(chunks []Chunk, m Measurer) {
	l.order = l.order[:0]
	l.source = make(map[int]Box)
	l.annotation = make(map[int]Box)

	sourceTop, annotationTop := 0, 0
	for _, c := range chunks {
		ph, ok := m.ParagraphHeight(c.ID)
		if !ok {
			continue
		}
		ah, _ := m.AnnotationHeight(c.ID)
		if ah < ph {
			ah = ph // minimum-height constraint
		}

		l.order = append(l.order, c.ID)
		l.source[c.ID] = Box{Top: sourceTop, Height: ph}
		l.annotation[c.ID] = Box{Top: annotationTop, Height: ah}
		sourceTop += ph
		annotationTop += ah
	}
}

// SourceBox returns the geometry of a chunk's source paragraph.
func (l *Layout) SourceBox(chunkID int) (Box, bool) {
	b, ok := l.source[chunkID]
	return b, ok
}

// AnnotationBox returns the geometry of a chunk's annotation block.
func (l *Layout) AnnotationBox(chunkID int) (Box, bool) {
	b, ok := l.annotation[chunkID]
	return b, ok
}

// Heights returns chunk id to measured source paragraph height, one entry
// per rendered chunk.
func (l *Layout) Heights() map[int]int {
	out := make(map[int]int, len(l.source))
	for id, b := range l.source {
		out[id] = b.Height
	}
	return out
}

// HitTest resolves a vertical offset within a pane to the chunk whose block
// contains it.
func (l *Layout) HitTest(pane Pane, y int) (chunkID int, ok bool) {
	boxes := l.source
	if pane == PaneAnnotation {
		boxes = l.annotation
	}
	for _, id := range l.order {
		b := boxes[id]
		if y >= b.Top && y < b.Top+b.Height {
			return id, true
		}
	}
	return 0, false
}

// TotalHeight returns the stacked height of a pane's blocks.
func (l *Layout) TotalHeight(pane Pane) int {
	boxes := l.source
	if pane == PaneAnnotation {
		boxes = l.annotation
	}
	total := 0
	for _, b := range boxes {
		total += b.Height
	}
	return total
}

// Rendered reports the chunk ids currently present in the geometry model, in
// document order.
func (l *Layout) Rendered() []int {
	out := make([]int, len(l.order))
	copy(out, l.order)
	return out
}

package viewer

import (
	"strings"
	"sync"
)

// TextMeasurer approximates rendered block heights from text alone, for
// outputs that have no live rendering layer (exports, tests, headless runs).
// Height is lines-after-wrapping times LineHeight.
type TextMeasurer struct {
	Columns    int
	LineHeight int

	mu          sync.Mutex
	paragraphs  map[int]string
	annotations map[int]string
}

// NewTextMeasurer creates a measurer wrapping text at the given column width.
func NewTextMeasurer(columns, lineHeight int) *TextMeasurer {
	if columns < 1 {
		columns = 80
	}
	if lineHeight < 1 {
		lineHeight = 1
	}
	return &TextMeasurer{
		Columns:     columns,
		LineHeight:  lineHeight,
		paragraphs:  make(map[int]string),
		annotations: make(map[int]string),
	}
}

// SetParagraph records a chunk's source text as rendered.
func (m *TextMeasurer) SetParagraph(chunkID int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paragraphs[chunkID] = text
}

// SetAnnotation records a chunk's annotation text as rendered.
func (m *TextMeasurer) SetAnnotation(chunkID int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.annotations[chunkID] = text
}

// Clear forgets all recorded text, for use on document reload.
func (m *TextMeasurer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paragraphs = make(map[int]string)
	m.annotations = make(map[int]string)
}

func (m *TextMeasurer) ParagraphHeight(chunkID int) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.paragraphs[chunkID]
	if !ok {
		return 0, false
	}
	return m.height(text), true
}

func (m *TextMeasurer) AnnotationHeight(chunkID int) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.annotations[chunkID]
	if !ok {
		return 0, false
	}
	return m.height(text), true
}

func (m *TextMeasurer) height(text string) int {
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		n := len([]rune(line))
		lines++
		for n > m.Columns {
			lines++
			n -= m.Columns
		}
	}
	return lines * m.LineHeight
}

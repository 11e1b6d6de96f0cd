package viewer

import (
	"log"
	"strings"
	"sync"

	"github.com/marginalia-reader/marginalia/internal/annotator"
)

// Session owns one loaded document and every structure derived from it: the
// latest annotation per chunk, the vocabulary dictionary, the two-pane
// geometry, and the scroll/hover state. All reactions are serialized by one
// mutex, so each derived structure is rebuilt wholesale by a single owner and
// readers never observe a partial update. Loading a new document replaces the
// chunk sequence atomically and resets everything derived.
type Session struct {
	mu sync.Mutex

	chunks      []Chunk
	annotations map[int]annotator.Annotation
	dict        map[string]string

	layout   *Layout
	scroll   *ScrollSync
	hover    *Hover
	measurer Measurer
}

// NewSession creates a session over the given rendering adapter. applyScroll
// pushes mirrored offsets back into the rendering layer and may be nil.
func NewSession(m Measurer, applyScroll func(Pane, int)) *Session {
	s := &Session{
		annotations: make(map[int]annotator.Annotation),
		dict:        make(map[string]string),
		layout:      NewLayout(),
		measurer:    m,
	}
	s.scroll = NewScrollSync(applyScroll)
	s.hover = NewHover(s.Definition)
	return s
}

// LoadChunks replaces the chunk sequence wholesale and resets annotations,
// dictionary, geometry, scroll, and hover state.
func (s *Session) LoadChunks(chunks []Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = make([]Chunk, len(chunks))
	copy(s.chunks, chunks)
	s.annotations = make(map[int]annotator.Annotation)
	s.dict = make(map[string]string)
	s.scroll.Reset()
	s.hover.Reset()
	s.reflowLocked()
}

// ApplyMessage ingests one streamed annotation message for a chunk. A
// well-formed message replaces the chunk's entire annotation and triggers a
// dictionary rebuild and reflow; a malformed one is logged and dropped
// without touching any state.
func (s *Session) ApplyMessage(chunkID int, raw []byte) error {
	ann, err := annotator.Parse(raw)
	if err != nil {
		log.Printf("viewer: chunk %d: dropping malformed message: %v", chunkID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.annotations[chunkID] = *ann
	s.rebuildDictionaryLocked()
	// Vocabulary spans change text wrapping, so geometry may have moved.
	s.reflowLocked()
	return nil
}

// Resize remeasures both panes; the rendering adapter calls this on viewport
// or font changes.
func (s *Session) Resize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reflowLocked()
}

// rebuildDictionaryLocked recomputes the dictionary from the union of all
// held annotations. When the same word appears in several chunks, which
// definition wins depends on map iteration order; that nondeterminism is a
// documented property of the aggregation, not resolved here.
func (s *Session) rebuildDictionaryLocked() {
	dict := make(map[string]string)
	for _, ann := range s.annotations {
		for _, v := range ann.Vocabs {
			dict[strings.ToLower(v.Word)] = v.Definition
		}
	}
	s.dict = dict
}

func (s *Session) reflowLocked() {
	s.layout.Reflow(s.chunks, s.measurer)
}

// Chunks returns the current chunk sequence.
func (s *Session) Chunks() []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Annotation returns the latest annotation for a chunk.
func (s *Session) Annotation(chunkID int) (annotator.Annotation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ann, ok := s.annotations[chunkID]
	return ann, ok
}

// Unannotated returns, in order, the chunks that have no annotation yet.
func (s *Session) Unannotated() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, c := range s.chunks {
		if _, ok := s.annotations[c.ID]; !ok {
			out = append(out, c.ID)
		}
	}
	return out
}

// Dictionary returns a copy of the current vocabulary dictionary.
func (s *Session) Dictionary() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.dict))
	for k, v := range s.dict {
		out[k] = v
	}
	return out
}

// Definition resolves one lowercase vocabulary key.
func (s *Session) Definition(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.dict[key]
	return def, ok
}

// Tokens returns a chunk's source text tokenized with vocabulary spans
// marked against the current dictionary.
func (s *Session) Tokens(chunkID int) []Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chunks {
		if c.ID == chunkID {
			return MarkVocabulary(c.Text, s.dict)
		}
	}
	return nil
}

// Layout exposes the geometry model. The returned structure is rebuilt in
// place by the session's reactions (ApplyMessage, LoadChunks, Resize), so it
// must only be read from the goroutine driving those reactions, or after the
// annotation stream has drained. Concurrent readers should go through the
// locked accessors above instead.
func (s *Session) Layout() *Layout { return s.layout }

// Scroll exposes the scroll synchronizer. Same ownership contract as Layout.
func (s *Session) Scroll() *ScrollSync { return s.scroll }

// Hover exposes the hover/tooltip controller. Same ownership contract as
// Layout.
func (s *Session) Hover() *Hover { return s.hover }

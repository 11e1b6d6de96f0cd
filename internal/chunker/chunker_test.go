package chunker

import (
	"strings"
	"testing"
)

func newSplitter(t *testing.T, cfg Config) *Splitter {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := newSplitter(t, Config{MaxTokens: 300})

	chunks := s.Split("The old manor was rickety.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "The old manor was rickety." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplitRespectsTokenCap(t *testing.T) {
	s := newSplitter(t, Config{MaxTokens: 40})

	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("One more sentence about the old manor and its rickety stairs.\n\n")
	}

	chunks := s.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := s.Tokens(c); n > 40 {
			t.Errorf("chunk %d has %d tokens, cap is 40", i, n)
		}
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	s := newSplitter(t, Config{MaxTokens: 30})

	text := "First short paragraph.\n\nSecond short paragraph.\n\nThird short paragraph."
	chunks := s.Split(text)

	for i, c := range chunks {
		if strings.Contains(c, "paragraph.\nSecond") || strings.Contains(c, "paragraph.\nThird") {
			t.Errorf("chunk %d crosses a paragraph boundary mid-line: %q", i, c)
		}
	}
	joined := strings.Join(chunks, " ")
	for _, want := range []string{"First short paragraph.", "Second short paragraph.", "Third short paragraph."} {
		if !strings.Contains(joined, want) {
			t.Errorf("text lost in split: %q", want)
		}
	}
}

func TestSplitDropsEmptyChunks(t *testing.T) {
	s := newSplitter(t, Config{MaxTokens: 50})

	chunks := s.Split("\n\n\n\n  \n\n")
	if len(chunks) != 0 {
		t.Errorf("expected no chunks from whitespace, got %v", chunks)
	}
}

func TestSplitNoSeparatorFallsBackToTokenWindows(t *testing.T) {
	s := newSplitter(t, Config{MaxTokens: 10})

	// One unbroken run with no paragraph, line, or space separators.
	text := strings.Repeat("abcdefghij", 40)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if got := strings.Join(chunks, ""); got != text {
		t.Error("token-window split lost text")
	}
	for i, c := range chunks {
		if n := s.Tokens(c); n > 10 {
			t.Errorf("chunk %d has %d tokens, cap is 10", i, n)
		}
	}
}

func TestSplitOverlapCarriesText(t *testing.T) {
	s := newSplitter(t, Config{MaxTokens: 25, Overlap: 10})

	text := "Alpha sentence one. Alpha sentence two. Alpha sentence three. Alpha sentence four. Alpha sentence five. Alpha sentence six. Alpha sentence seven. Alpha sentence eight."
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		if len(prevWords) == 0 {
			continue
		}
		last := prevWords[len(prevWords)-1]
		if !strings.Contains(chunks[i], last) {
			t.Errorf("chunk %d does not overlap with the tail of chunk %d", i, i-1)
		}
	}
}

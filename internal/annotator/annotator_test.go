package annotator

import (
	"context"
	"strings"
	"testing"

	"github.com/marginalia-reader/marginalia/internal/library"
)

// fakeProvider records the request and returns a canned completion.
type fakeProvider struct {
	lastReq CompletionRequest
	reply   string
	err     error
}

func (f *fakeProvider) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.lastReq = req
	return f.reply, f.err
}

func TestAnnotateBuildsPromptWithAdjacentContext(t *testing.T) {
	lib := library.New()
	doc := lib.AddDocument("u", "t", []string{"before text", "target text", "after text"})

	fake := &fakeProvider{reply: `{"summary":"ok","vocabs":[]}`}
	a := New(fake, lib, "gpt-4o-mini", 256)

	ann, err := a.Annotate(context.Background(), doc.ChunkIDs[1], "explain everything", 0)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if ann.Summary != "ok" {
		t.Errorf("unexpected summary: %q", ann.Summary)
	}

	user := fake.lastReq.User
	begin := strings.Index(user, "=== BEGIN SECTION TO EXPLICATE ===")
	end := strings.Index(user, "=== END SECTION TO EXPLICATE ===")
	if begin == -1 || end == -1 || begin > end {
		t.Fatalf("missing section markers in prompt:\n%s", user)
	}
	if !strings.Contains(user[begin:end], "target text") {
		t.Error("target chunk not between the markers")
	}
	if !strings.Contains(user, "before text") || !strings.Contains(user, "after text") {
		t.Error("adjacent context missing from prompt")
	}
	if !strings.Contains(user, "=== TASK ===\nexplain everything") {
		t.Error("goal missing from prompt")
	}
	if fake.lastReq.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model: %q", fake.lastReq.Model)
	}
}

func TestAnnotateBoundaryChunksHaveEmptyContext(t *testing.T) {
	lib := library.New()
	doc := lib.AddDocument("u", "t", []string{"only chunk"})

	fake := &fakeProvider{reply: `{"summary":"s","vocabs":[]}`}
	a := New(fake, lib, "m", 256)

	if _, err := a.Annotate(context.Background(), doc.ChunkIDs[0], "g", 0); err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if !strings.Contains(fake.lastReq.User, "=== CONTEXT BEFORE ===\n\n") {
		t.Error("expected empty before-context at document start")
	}
}

func TestAnnotateMaxTokens(t *testing.T) {
	lib := library.New()
	doc := lib.AddDocument("u", "t", []string{"text"})

	fake := &fakeProvider{reply: `{"summary":"s","vocabs":[]}`}
	a := New(fake, lib, "m", 256)

	if _, err := a.Annotate(context.Background(), doc.ChunkIDs[0], "g", 64); err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if fake.lastReq.MaxTokens != 64 {
		t.Errorf("MaxTokens = %d, want the per-request cap", fake.lastReq.MaxTokens)
	}

	if _, err := a.Annotate(context.Background(), doc.ChunkIDs[0], "g", 0); err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if fake.lastReq.MaxTokens != 256 {
		t.Errorf("MaxTokens = %d, want the configured default", fake.lastReq.MaxTokens)
	}
}

func TestAnnotateUnknownChunk(t *testing.T) {
	a := New(&fakeProvider{}, library.New(), "m", 256)
	if _, err := a.Annotate(context.Background(), 42, "g", 0); err == nil {
		t.Fatal("expected error for unknown chunk")
	}
}

func TestAnnotateRejectsMalformedCompletion(t *testing.T) {
	lib := library.New()
	doc := lib.AddDocument("u", "t", []string{"text"})

	a := New(&fakeProvider{reply: "not json"}, lib, "m", 256)
	if _, err := a.Annotate(context.Background(), doc.ChunkIDs[0], "g", 0); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParse(t *testing.T) {
	ann, err := Parse([]byte(`{"summary":"A description of a worn house.","vocabs":[{"word":"rickety","definition":"shaky and unstable"}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ann.Summary != "A description of a worn house." {
		t.Errorf("unexpected summary: %q", ann.Summary)
	}
	if len(ann.Vocabs) != 1 || ann.Vocabs[0].Word != "rickety" {
		t.Errorf("unexpected vocabs: %+v", ann.Vocabs)
	}

	if _, err := Parse([]byte(`{"vocabs":[]}`)); err == nil {
		t.Error("expected error for message without summary")
	}
	if _, err := Parse([]byte(`[1,2,3]`)); err == nil {
		t.Error("expected error for non-object message")
	}
}

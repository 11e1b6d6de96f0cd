// Package annotator produces per-chunk annotations (summary + vocabulary
// glosses) by sending each chunk, with its adjacent context, to an LLM.
package annotator

import (
	"context"
	"fmt"

	"github.com/marginalia-reader/marginalia/internal/library"
)

const systemPrompt = "You are a literary annotator. Provide clear, concise commentary ONLY for the text " +
	"between the markers 'BEGIN SECTION TO EXPLICATE' and 'END SECTION TO EXPLICATE'. Use the " +
	"surrounding context solely to inform your analysis; do not annotate it. " +
	"If the relevant section seems to be webpage code or title page etc your summary should just be three dots/ellipses (...) only. " +
	`Respond with a JSON object of the form {"summary": "...", "vocabs": [{"word": "...", "definition": "..."}]}.`

// Annotator annotates chunks held in a Library.
type Annotator struct {
	provider  Provider
	lib       *library.Library
	model     string
	maxTokens int
}

// New creates an Annotator.
func New(provider Provider, lib *library.Library, model string, maxTokens int) *Annotator {
	return &Annotator{provider: provider, lib: lib, model: model, maxTokens: maxTokens}
}

// Annotate analyzes one chunk under the given goal instruction and returns
// the parsed annotation. maxTokens caps the completion for this request; zero
// or negative uses the annotator's configured default.
func (a *Annotator) Annotate(ctx context.Context, chunkID int, goal string, maxTokens int) (*Annotation, error) {
	if maxTokens <= 0 {
		maxTokens = a.maxTokens
	}
	chunk, err := a.lib.Chunk(chunkID)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", chunkID, err)
	}
	prev, next, err := a.lib.Adjacent(chunkID)
	if err != nil {
		return nil, fmt.Errorf("chunk %d context: %w", chunkID, err)
	}

	content := buildPrompt(textOf(prev), chunk.Text, textOf(next), goal)

	raw, err := a.provider.Complete(ctx, CompletionRequest{
		Model:     a.model,
		System:    systemPrompt,
		User:      content,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("annotating chunk %d: %w", chunkID, err)
	}

	ann, err := Parse([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("annotating chunk %d: %w", chunkID, err)
	}
	return ann, nil
}

// buildPrompt assembles the user message with explicit section markers so the
// model annotates only the target chunk.
func buildPrompt(prev, target, next, goal string) string {
	return fmt.Sprintf(
		"=== CONTEXT BEFORE ===\n%s\n\n=== BEGIN SECTION TO EXPLICATE ===\n%s\n=== END SECTION TO EXPLICATE ===\n\n=== CONTEXT AFTER ===\n%s\n\n=== TASK ===\n%s\n",
		prev, target, next, goal,
	)
}

func textOf(c *library.Chunk) string {
	if c == nil {
		return ""
	}
	return c.Text
}

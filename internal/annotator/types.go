package annotator

import (
	"encoding/json"
	"fmt"
)

// VocabEntry is one (word, definition) gloss surfaced by analysis.
type VocabEntry struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// Annotation is the analysis result for one chunk: a short summary plus
// vocabulary glosses. This is also the wire format pushed over a chunk's
// annotation channel.
type Annotation struct {
	Summary string       `json:"summary"`
	Vocabs  []VocabEntry `json:"vocabs"`
}

// Parse decodes a streamed annotation message. A message missing the summary
// field entirely is rejected so that unrelated JSON objects do not blank out
// an existing annotation.
func Parse(raw []byte) (*Annotation, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decoding annotation: %w", err)
	}
	if _, ok := probe["summary"]; !ok {
		return nil, fmt.Errorf("decoding annotation: missing summary field")
	}
	var a Annotation
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decoding annotation: %w", err)
	}
	return &a, nil
}

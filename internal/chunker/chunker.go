// Package chunker splits document text into token-bounded chunks, preferring
// paragraph boundaries, then line, word, and finally raw token boundaries.
package chunker

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// separators are tried in order; the first one present in the text is used,
// and overlong pieces recurse to the next. The empty separator means "split
// on raw token windows".
var separators = []string{"\n\n", "\n", " ", ""}

// Config controls chunking behavior.
type Config struct {
	MaxTokens int // approximate token cap per chunk
	Overlap   int // token overlap carried between adjacent chunks
}

// DefaultConfig returns sensible defaults for prose.
func DefaultConfig() Config {
	return Config{MaxTokens: 300, Overlap: 0}
}

// Splitter is a token-aware recursive text splitter.
type Splitter struct {
	encoder *tiktoken.Tiktoken
	cfg     Config
}

// New creates a Splitter using the cl100k_base encoding.
func New(cfg Config) (*Splitter, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("loading cl100k_base encoding: %w", err)
	}
	return &Splitter{encoder: encoder, cfg: cfg}, nil
}

// Tokens returns the token count of text.
func (s *Splitter) Tokens(text string) int {
	return len(s.encoder.Encode(text, nil, nil))
}

// Split breaks text into chunks of at most MaxTokens tokens each. Whitespace
// at chunk edges is trimmed and empty chunks are dropped.
func (s *Splitter) Split(text string) []string {
	var chunks []string
	for _, c := range s.split(text, separators) {
		c = strings.TrimSpace(c)
		if c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

func (s *Splitter) split(text string, seps []string) []string {
	// Pick the first separator that actually occurs in the text.
	sep := seps[len(seps)-1]
	var rest []string
	for i, candidate := range seps {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	if sep == "" {
		return s.tokenWindows(text)
	}

	var final []string
	var small []string
	for _, piece := range strings.Split(text, sep) {
		if s.Tokens(piece) <= s.cfg.MaxTokens {
			small = append(small, piece)
			continue
		}
		// Flush accumulated small pieces, then recurse into the big one.
		final = append(final, s.merge(small, sep)...)
		small = nil
		final = append(final, s.split(piece, rest)...)
	}
	return append(final, s.merge(small, sep)...)
}

// merge joins consecutive small pieces with sep while the result stays under
// the token cap, carrying Overlap tokens' worth of trailing pieces into the
// next chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	var chunks []string
	var current []string
	size := 0
	sepTokens := s.Tokens(sep)

	for _, piece := range pieces {
		n := s.Tokens(piece)
		if len(current) > 0 && size+sepTokens+n > s.cfg.MaxTokens {
			chunks = append(chunks, strings.Join(current, sep))

			// Retain trailing pieces for overlap.
			var kept []string
			keptSize := 0
			for i := len(current) - 1; i >= 0; i-- {
				t := s.Tokens(current[i])
				if keptSize+t > s.cfg.Overlap {
					break
				}
				kept = append([]string{current[i]}, kept...)
				keptSize += t + sepTokens
			}
			current = kept
			size = keptSize
		}
		current = append(current, piece)
		size += n
		if len(current) > 1 {
			size += sepTokens
		}
	}
	if len(current) > 0 {
		joined := strings.Join(current, sep)
		if strings.TrimSpace(joined) != "" {
			chunks = append(chunks, joined)
		}
	}
	return chunks
}

// tokenWindows splits text that contains no usable separator into windows of
// MaxTokens tokens by encoding and re-decoding.
func (s *Splitter) tokenWindows(text string) []string {
	ids := s.encoder.Encode(text, nil, nil)
	var chunks []string
	step := s.cfg.MaxTokens - s.cfg.Overlap
	if step <= 0 {
		step = s.cfg.MaxTokens
	}
	for start := 0; start < len(ids); start += step {
		end := start + s.cfg.MaxTokens
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, s.encoder.Decode(ids[start:end]))
		if end == len(ids) {
			break
		}
	}
	return chunks
}

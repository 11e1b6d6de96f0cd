package viewer

import (
	"strings"
	"unicode"
)

// Token is one run of source text: either a vocabulary span (Vocab true, Key
// holding the lowercase dictionary key) or plain text passed through
// unchanged.
type Token struct {
	Text  string
	Vocab bool
	Key   string
}

// MarkVocabulary tokenizes text on word boundaries and marks every token
// whose lowercase form is a dictionary key. Concatenating the tokens' Text
// reproduces the input exactly.
func MarkVocabulary(text string, dict map[string]string) []Token {
	var tokens []Token
	runes := []rune(text)

	flush := func(start, end int, word bool) {
		if start >= end {
			return
		}
		t := Token{Text: string(runes[start:end])}
		if word {
			key := strings.ToLower(t.Text)
			if _, ok := dict[key]; ok {
				t.Vocab = true
				t.Key = key
			}
		}
		tokens = append(tokens, t)
	}

	start := 0
	inWord := false
	for i, r := range runes {
		w := isWordRune(r)
		if w != inWord {
			flush(start, i, inWord)
			start = i
			inWord = w
		}
	}
	flush(start, len(runes), inWord)

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

package gutenberg

import (
	"regexp"
	"strings"
)

var (
	header = regexp.MustCompile(`(?s)\*\*\* START OF (?:THIS|THE) PROJECT GUTENBERG EBOOK.+?\*\*\*`)
	footer = regexp.MustCompile(`(?s)\*\*\* END OF (?:THIS|THE) PROJECT GUTENBERG EBOOK.+`)
)

// Clean strips the Project Gutenberg license header and footer, leaving only
// the book text. Text without the markers passes through unchanged.
func Clean(raw string) string {
	raw = header.ReplaceAllString(raw, "")
	raw = footer.ReplaceAllString(raw, "")
	return strings.TrimSpace(raw)
}

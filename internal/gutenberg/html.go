package gutenberg

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// skipElements are HTML elements whose text content is never document prose.
var skipElements = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
	"nav":    true,
}

// blockElements start a new paragraph when walked.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "tr": true,
}

// extractHTMLText walks an HTML tree and returns its visible text with
// block elements separated by blank lines, so the downstream splitter
// sees paragraph boundaries.
func extractHTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteString("\n\n")
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseBlankLines(b.String()), nil
}

// collapseBlankLines trims each line and squeezes runs of blank lines down
// to a single paragraph break.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

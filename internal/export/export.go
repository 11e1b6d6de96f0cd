// Package export renders an annotated session as a standalone two-pane HTML
// page: source text with vocabulary spans on the left, annotations on the
// right, with the engine's minimum-height constraint emitted as inline style
// so the exported page keeps the block correspondence.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/marginalia-reader/marginalia/internal/viewer"
)

// block is one chunk pair passed to the page template.
type block struct {
	ID        int
	Source    template.HTML
	Summary   template.HTML
	MinHeight int
}

type pageData struct {
	Title  string
	Blocks []block
}

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

// WriteHTML renders the session to w.
func WriteHTML(w io.Writer, title string, session *viewer.Session) error {
	data := pageData{Title: title}

	for _, chunk := range session.Chunks() {
		b := block{ID: chunk.ID}
		b.Source = renderTokens(session.Tokens(chunk.ID), session)

		if ann, ok := session.Annotation(chunk.ID); ok {
			var buf bytes.Buffer
			if err := md.Convert([]byte(ann.Summary), &buf); err != nil {
				return fmt.Errorf("rendering summary for chunk %d: %w", chunk.ID, err)
			}
			b.Summary = template.HTML(buf.String())
		}

		if box, ok := session.Layout().SourceBox(chunk.ID); ok {
			b.MinHeight = box.Height
		}
		data.Blocks = append(data.Blocks, b)
	}

	return pageTemplate.Execute(w, data)
}

// renderTokens escapes a chunk's tokens and wraps vocabulary spans, carrying
// the definition in the title attribute so the static page still shows it.
func renderTokens(tokens []viewer.Token, session *viewer.Session) template.HTML {
	var buf bytes.Buffer
	for _, t := range tokens {
		if !t.Vocab {
			buf.WriteString(template.HTMLEscapeString(t.Text))
			continue
		}
		def, _ := session.Definition(t.Key)
		fmt.Fprintf(&buf, `<span class="vocab" data-vocab="%s" title="%s">%s</span>`,
			template.HTMLEscapeString(t.Key),
			template.HTMLEscapeString(def),
			template.HTMLEscapeString(t.Text))
	}
	return template.HTML(buf.String())
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; margin: 0; }
.panes { display: flex; gap: 2rem; max-width: 72rem; margin: 0 auto; padding: 2rem; }
.pane { flex: 1; min-width: 0; }
.chunk { margin: 0 0 1rem; }
.annotation { color: #444; font-size: 0.92em; }
.vocab { background: #fff3bf; border-bottom: 1px dotted #b08900; cursor: help; }
</style>
</head>
<body>
<main class="panes">
<section class="pane" aria-label="source">
{{range .Blocks}}<p class="chunk" data-chunk-id="{{.ID}}">{{.Source}}</p>
{{end}}</section>
<section class="pane" aria-label="annotations">
{{range .Blocks}}<div class="chunk annotation" data-chunk-id="{{.ID}}"{{if .MinHeight}} style="min-height:{{.MinHeight}}px"{{end}}>{{.Summary}}</div>
{{end}}</section>
</main>
</body>
</html>
`))

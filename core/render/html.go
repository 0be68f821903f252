// Package render — HTML preview renderer.
// Renders the converted Markdown back to HTML with goldmark so the result
// can be checked in a browser.
package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/gaurav-prasanna/htmd/core"
)

const previewPage = `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`

// HTMLRenderer renders Markdown as a standalone HTML page.
type HTMLRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// Unknown tags pass through the Markdown as raw HTML.
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Render converts the document's Markdown into an HTML page.
func (r *HTMLRenderer) Render(doc *core.Document) ([]byte, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(doc.Markdown), &body); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	lang := doc.Metadata.Language
	if lang == "" {
		lang = "en"
	}
	page := fmt.Sprintf(previewPage,
		html.EscapeString(lang),
		html.EscapeString(doc.Metadata.Title),
		body.String(),
	)
	return []byte(page), nil
}

// Extension returns the file extension for HTML output.
func (r *HTMLRenderer) Extension() string {
	return ".html"
}

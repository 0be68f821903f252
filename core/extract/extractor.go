// Package extract implements the Extractor interface.
// It isolates the main content from a full HTML page by:
//  1. Removing noise elements (nav, footer, scripts, forms, etc.)
//  2. Keeping the first matching content container (<main>, <article>, or <body>)
//
// The result is re-serialized in the form the strict parser expects: void
// elements self-closed, text and attribute values written as decoded, with
// only '<' in text and '"' in values escaped.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
)

// DefaultNoise lists selectors removed before extraction.
var DefaultNoise = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// DefaultContainers lists content containers in priority order.
var DefaultContainers = []string{"main", "article", "body"}

// Options configures an HTMLExtractor. Nil slices take the defaults.
type Options struct {
	Containers []string
	Noise      []string
}

// HTMLExtractor strips noise from HTML and returns the main content fragment.
type HTMLExtractor struct {
	containers []string
	noise      []string
}

// New creates an HTMLExtractor.
func New(opts Options) *HTMLExtractor {
	if opts.Containers == nil {
		opts.Containers = DefaultContainers
	}
	if opts.Noise == nil {
		opts.Noise = DefaultNoise
	}
	return &HTMLExtractor{containers: opts.Containers, noise: opts.Noise}
}

// Extract takes raw HTML and returns a cleaned HTML fragment containing
// only the main content.
func (e *HTMLExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range e.noise {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, sel := range e.containers {
		if found := doc.Find(sel); found.Length() > 0 {
			content = found.First()
			break
		}
	}
	if content == nil {
		return "", fmt.Errorf("no content container found in HTML")
	}

	var b strings.Builder
	writeNode(&b, content.Get(0))
	return b.String(), nil
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func writeNode(b *strings.Builder, n *nethtml.Node) {
	switch n.Type {
	case nethtml.TextNode:
		b.WriteString(strings.ReplaceAll(n.Data, "<", "&lt;"))
	case nethtml.CommentNode:
		b.WriteString("<!--" + n.Data + "-->")
	case nethtml.ElementNode:
		b.WriteString("<" + n.Data)
		for _, a := range n.Attr {
			b.WriteString(" " + a.Key + `="` + strings.ReplaceAll(a.Val, `"`, "&quot;") + `"`)
		}
		if voidElements[n.Data] {
			b.WriteString("/>")
			return
		}
		b.WriteByte('>')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(b, c)
		}
		b.WriteString("</" + n.Data + ">")
	}
}

// Head returns the document title and the lang attribute of <html>.
// It reads the full page, so it works when extraction dropped the head.
func Head(html string) (title, lang string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())
	lang, _ = doc.Find("html").First().Attr("lang")
	return title, lang
}

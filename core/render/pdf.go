// Package render — PDF renderer.
// Lays out the parsed node tree as a styled PDF using gofpdf: headings
// (variable font sizes), paragraphs, code blocks, lists and blockquotes.
// Documents without a tree (fallback conversions) are laid out from the
// Markdown line by line.
package render

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/htmd/core"
	"github.com/gaurav-prasanna/htmd/core/markdown"
	"github.com/gaurav-prasanna/htmd/core/node"
)

const listIndent = 6.0 // mm per nesting level

// PDFRenderer renders a document as PDF.
type PDFRenderer struct {
	cfg markdown.Config
}

// NewPDFRenderer creates a PDFRenderer. Kinds ignored by cfg are left out
// of the layout, as they are from the Markdown.
func NewPDFRenderer(cfg markdown.Config) *PDFRenderer {
	return &PDFRenderer{cfg: cfg}
}

// Render converts the document into PDF bytes.
func (r *PDFRenderer) Render(doc *core.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	w := &pdfWriter{
		pdf: pdf,
		cfg: r.cfg,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	w.header(doc.Metadata)

	if doc.Tree != nil {
		w.block(doc.Tree, 0, false)
	} else {
		w.markdown(doc.Markdown)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

type pdfWriter struct {
	pdf *gofpdf.Fpdf
	cfg markdown.Config
	tr  func(string) string // UTF-8 to the core font encoding
}

func (w *pdfWriter) header(meta core.PageMetadata) {
	if meta.Title != "" {
		w.pdf.SetFont("Helvetica", "B", 18)
		w.pdf.MultiCell(0, 8, w.tr(meta.Title), "", "L", false)
		w.pdf.Ln(4)
	}

	w.pdf.SetFont("Helvetica", "I", 9)
	w.pdf.SetTextColor(100, 100, 100)
	w.pdf.MultiCell(0, 5, w.tr("Source: "+meta.Source), "", "L", false)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.Ln(6)
}

// block lays out n as block content at the given indentation.
func (w *pdfWriter) block(n *node.Node, indent float64, quoted bool) {
	if w.cfg.Ignores(n.Kind) {
		return
	}

	switch k := n.Kind; {
	case k.Level() > 0:
		w.heading(w.inline(n), k.Level())

	case k == node.P, k == node.Text, k == node.Strong, k == node.Em,
		k == node.A, k == node.Br, k.IsUnknown():
		w.paragraph(w.inline(n), indent, quoted)

	case k == node.Ul || k == node.Ol:
		w.list(n, indent, quoted)

	case k == node.Pre || k == node.Code:
		w.code(n.TextContent(), indent)

	case k == node.Blockquote:
		for _, c := range n.Children {
			w.block(c, indent+listIndent, true)
		}

	case k == node.Hr:
		y := w.pdf.GetY() + 2
		left, _, right, _ := w.pdf.GetMargins()
		pageWidth, _ := w.pdf.GetPageSize()
		w.pdf.Line(left, y, pageWidth-right, y)
		w.pdf.Ln(4)

	case k == node.Head, k == node.Title, k == node.Script, k == node.Style,
		k == node.Meta, k == node.Link, k == node.Comment:
		// not part of the page body

	default:
		for _, c := range n.Children {
			w.block(c, indent, quoted)
		}
	}
}

func (w *pdfWriter) list(n *node.Node, indent float64, quoted bool) {
	num := 1
	if v, ok := n.Attributes.Get("start"); ok {
		if start, ok := v.Int(); ok {
			num = start
		}
	}

	for _, item := range n.Children {
		if w.cfg.Ignores(item.Kind) {
			continue
		}
		bullet := "• "
		if n.Kind == node.Ol {
			bullet = strconv.Itoa(num) + ". "
			num++
		}

		// Inline content first, nested blocks below it.
		var text strings.Builder
		var nested []*node.Node
		for _, c := range item.Children {
			switch c.Kind {
			case node.Ul, node.Ol, node.Pre, node.Blockquote:
				nested = append(nested, c)
			default:
				if text.Len() > 0 && c.Kind == node.P {
					text.WriteByte(' ')
				}
				text.WriteString(w.inline(c))
			}
		}
		if item.Kind == node.Text {
			text.WriteString(item.Text)
		}
		w.paragraph(bullet+strings.TrimSpace(text.String()), indent, quoted)
		for _, c := range nested {
			w.block(c, indent+listIndent, quoted)
		}
	}
}

// inline flattens n into a single line of text.
func (w *pdfWriter) inline(n *node.Node) string {
	var b strings.Builder
	n.Walk(func(c *node.Node) bool {
		if w.cfg.Ignores(c.Kind) {
			return false
		}
		switch c.Kind {
		case node.Text:
			b.WriteString(c.Text)
		case node.Br:
			b.WriteString("\n")
		case node.Comment:
			return false
		}
		return true
	})
	return b.String()
}

func (w *pdfWriter) paragraph(text string, indent float64, quoted bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if quoted {
		w.pdf.SetFont("Helvetica", "I", 10)
		w.pdf.SetTextColor(80, 80, 80)
	} else {
		w.pdf.SetFont("Helvetica", "", 10)
	}
	w.indented(indent, func() {
		w.pdf.MultiCell(0, 5, w.tr(text), "", "L", false)
	})
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.Ln(1)
}

func (w *pdfWriter) code(text string, indent float64) {
	w.pdf.Ln(2)
	w.pdf.SetFont("Courier", "", 9)
	w.pdf.SetFillColor(245, 245, 245)
	w.indented(indent, func() {
		w.pdf.MultiCell(0, 4.5, w.tr(text), "", "L", true)
	})
	w.pdf.Ln(2)
}

// indented runs fn with the left margin moved right by indent.
func (w *pdfWriter) indented(indent float64, fn func()) {
	left, top, right, _ := w.pdf.GetMargins()
	w.pdf.SetMargins(left+indent, top, right)
	w.pdf.SetX(left + indent)
	fn()
	w.pdf.SetMargins(left, top, right)
	w.pdf.SetX(left)
}

// heading sets the font size based on heading level and writes text.
func (w *pdfWriter) heading(text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	w.pdf.Ln(4)
	w.pdf.SetFont("Helvetica", "B", size)
	w.pdf.MultiCell(0, size*0.6, w.tr(strings.TrimSpace(text)), "", "L", false)
	w.pdf.Ln(2)
}

var (
	numberedItemRegex = regexp.MustCompile(`^\d+\.\s`)
	italicRegex       = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	mdLinkRegex       = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

// markdown lays out Markdown text line by line.
func (w *pdfWriter) markdown(md string) {
	inCodeBlock := false
	var code []string

	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCodeBlock {
				w.code(strings.Join(code, "\n"), 0)
				code = nil
			}
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			code = append(code, line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			w.pdf.Ln(2)
		case strings.HasPrefix(line, "#"):
			level := len(line) - len(strings.TrimLeft(line, "#"))
			w.heading(cleanInlineMarkdown(strings.TrimLeft(line, "# ")), level)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			w.paragraph("• "+cleanInlineMarkdown(trimmed[2:]), 0, false)
		case numberedItemRegex.MatchString(trimmed):
			w.paragraph(cleanInlineMarkdown(trimmed), 0, false)
		case strings.HasPrefix(trimmed, ">"):
			w.paragraph(cleanInlineMarkdown(strings.TrimLeft(trimmed, "> ")), listIndent, true)
		default:
			w.paragraph(cleanInlineMarkdown(line), 0, false)
		}
	}
	if len(code) > 0 {
		w.code(strings.Join(code, "\n"), 0)
	}
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = italicRegex.ReplaceAllString(text, " $1 ")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = mdLinkRegex.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// Package render — Markdown renderer.
// Writes the converted Markdown, optionally preceded by a YAML front matter
// block describing the source document.
package render

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/htmd/core"
)

// MarkdownRenderer writes Markdown as-is, with optional front matter.
type MarkdownRenderer struct {
	frontMatter bool
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer(frontMatter bool) *MarkdownRenderer {
	return &MarkdownRenderer{frontMatter: frontMatter}
}

type frontMatter struct {
	Title       string   `yaml:"title,omitempty"`
	Source      string   `yaml:"source"`
	Language    string   `yaml:"language,omitempty"`
	ConvertedAt string   `yaml:"converted_at"`
	Headings    []string `yaml:"headings,omitempty"`
	Fallback    bool     `yaml:"fallback,omitempty"`
}

// Render returns the Markdown, preceded by front matter when enabled.
func (r *MarkdownRenderer) Render(doc *core.Document) ([]byte, error) {
	if !r.frontMatter {
		return []byte(doc.Markdown), nil
	}

	fm := frontMatter{
		Title:       doc.Metadata.Title,
		Source:      doc.Metadata.Source,
		Language:    doc.Metadata.Language,
		ConvertedAt: doc.Metadata.ConvertedAt,
		Fallback:    doc.Fallback,
	}
	for _, h := range Structure(doc).Headings {
		fm.Headings = append(fm.Headings, h.Text)
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(doc.Markdown)
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// Package core defines the pipeline interfaces for htmd.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"

	"github.com/gaurav-prasanna/htmd/core/node"
)

// FetchResult holds the decoded HTML and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	HTML        string // always UTF-8
}

// PageMetadata holds metadata extracted from the document and its source.
type PageMetadata struct {
	Source      string `json:"source"`
	URL         string `json:"url,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Path        string `json:"path,omitempty"`
	Title       string `json:"title"`
	Language    string `json:"language,omitempty"`
	ConvertedAt string `json:"converted_at"` // ISO8601
}

// Conversion is the result of normalizing HTML. Tree is nil when the
// Markdown came from the lenient fallback converter.
type Conversion struct {
	Tree     *node.Node
	Markdown string
	Fallback bool
}

// Document is everything a Renderer needs to produce one output file.
type Document struct {
	Metadata PageMetadata
	Conversion
}

// Heading represents a single heading found in the document.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link represents a hyperlink found in the document.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// PageContent holds the converted content of a page.
type PageContent struct {
	Markdown string  `json:"markdown"`
	Text     string  `json:"text"`
	Chunks   []Chunk `json:"chunks,omitempty"`
}

// Chunk is a run of at most a fixed number of words from one section of
// the Markdown. Heading is the section's heading text, empty before the
// first heading.
type Chunk struct {
	Heading string `json:"heading,omitempty"`
	Text    string `json:"text"`
}

// PageStructure holds structural metadata collected from the tree.
type PageStructure struct {
	Headings    []Heading `json:"headings"`
	Links       []Link    `json:"links"`
	CodeBlocks  int       `json:"code_blocks"`
	Lists       int       `json:"lists"`
	Blockquotes int       `json:"blockquotes"`
}

// PageJSON is the complete JSON output for a single document.
type PageJSON struct {
	Metadata  PageMetadata  `json:"metadata"`
	Content   PageContent   `json:"content"`
	Structure PageStructure `json:"structure"`
	Fallback  bool          `json:"fallback,omitempty"`
	Tree      *node.Node    `json:"tree,omitempty"`
}

// Fetcher retrieves HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor pulls the main content from raw HTML, stripping noise.
type Extractor interface {
	Extract(html string) (string, error)
}

// Normalizer converts HTML into a node tree and its Markdown rendering.
type Normalizer interface {
	Normalize(ctx context.Context, html string) (*Conversion, error)
}

// Renderer converts a converted document into a final output format.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}

// Package render — JSON renderer.
// Builds the structured JSON output from the converted document: metadata,
// Markdown, plain text, optional chunks, structure and the parsed tree.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/htmd/core"
	"github.com/gaurav-prasanna/htmd/core/chunk"
)

// JSONRenderer produces structured JSON output.
type JSONRenderer struct {
	chunker *chunk.Chunker // nil when chunking is off
}

// NewJSONRenderer creates a JSONRenderer. A positive chunkSize adds the
// Markdown split into chunks of at most that many words.
func NewJSONRenderer(chunkSize int) *JSONRenderer {
	r := &JSONRenderer{}
	if chunkSize > 0 {
		r.chunker = chunk.New(chunkSize)
	}
	return r
}

// Render converts the document into indented JSON.
func (r *JSONRenderer) Render(doc *core.Document) ([]byte, error) {
	page := core.PageJSON{
		Metadata: doc.Metadata,
		Content: core.PageContent{
			Markdown: doc.Markdown,
			Text:     PlainText(doc.Markdown),
		},
		Structure: Structure(doc),
		Fallback:  doc.Fallback,
		Tree:      doc.Tree,
	}

	if r.chunker != nil {
		page.Content.Chunks = r.chunker.Chunk(doc.Markdown)
	}

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

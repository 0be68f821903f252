// Package chunk splits Markdown into word-bounded chunks for indexing.
// Chunks never cross a heading, so every chunk belongs to one section.
package chunk

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/htmd/core"
)

// DefaultSize is the chunk size used when none is given.
const DefaultSize = 512

var headingRegex = regexp.MustCompile(`^#{1,6}\s+(.+)$`)

// Chunker splits Markdown into chunks of at most Size words.
type Chunker struct {
	Size int
}

// New creates a Chunker. A size of zero or less selects DefaultSize.
func New(size int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	return &Chunker{Size: size}
}

// Chunk splits md at its headings and then splits each section into runs
// of at most Size words. Lines inside fenced code never start a section.
func (c *Chunker) Chunk(md string) []core.Chunk {
	var (
		chunks  []core.Chunk
		heading string
		words   []string
		inFence bool
	)
	flush := func() {
		for i := 0; i < len(words); i += c.Size {
			end := min(i+c.Size, len(words))
			chunks = append(chunks, core.Chunk{Heading: heading, Text: strings.Join(words[i:end], " ")})
		}
		words = nil
	}

	for _, line := range strings.Split(md, "\n") {
		if !inFence {
			if m := headingRegex.FindStringSubmatch(line); m != nil {
				flush()
				heading = strings.TrimSpace(m[1])
				continue
			}
		}
		// A line with an odd number of fences opens or closes a block.
		if strings.Count(line, "```")%2 == 1 {
			inFence = !inFence
		}
		words = append(words, strings.Fields(line)...)
	}
	flush()
	return chunks
}

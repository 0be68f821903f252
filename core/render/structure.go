// Package render provides output renderers for the htmd pipeline.
// This file collects structural information (headings, links, code blocks,
// lists, blockquotes) shared by the JSON and front matter outputs. It reads
// the node tree when there is one and falls back to scanning the Markdown
// for documents converted by the lenient fallback.
package render

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/htmd/core"
	"github.com/gaurav-prasanna/htmd/core/node"
)

// Structure describes the document's headings, links and block counts.
func Structure(doc *core.Document) core.PageStructure {
	if doc.Tree != nil {
		return treeStructure(doc.Tree)
	}
	return markdownStructure(doc.Markdown)
}

func treeStructure(tree *node.Node) core.PageStructure {
	s := core.PageStructure{
		Headings: []core.Heading{},
		Links:    []core.Link{},
	}
	tree.Walk(func(n *node.Node) bool {
		switch k := n.Kind; {
		case k.Level() > 0:
			s.Headings = append(s.Headings, core.Heading{
				Level: k.Level(),
				Text:  strings.TrimSpace(n.TextContent()),
			})
		case k == node.A:
			if href, ok := n.Attributes.Get("href"); ok {
				s.Links = append(s.Links, core.Link{
					Text: strings.TrimSpace(n.TextContent()),
					Href: href.String(),
				})
			}
		case k == node.Code:
			s.CodeBlocks++
		case k == node.Ul || k == node.Ol:
			s.Lists++
		case k == node.Blockquote:
			s.Blockquotes++
		case k == node.Title || k == node.Script || k == node.Style:
			return false
		}
		return true
	})
	return s
}

// --- Markdown scanning helpers, used for fallback conversions ---

var headingRegex = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// linkRegex matches Markdown links [text](url) and [text](<url>).
var linkRegex = regexp.MustCompile(`\[([^\]]*)\]\(<?([^)>]+)>?\)`)

var listItemRegex = regexp.MustCompile(`^\s*([-*+]|\d+\.)\s`)

func markdownStructure(md string) core.PageStructure {
	s := core.PageStructure{
		Headings: []core.Heading{},
		Links:    []core.Link{},
	}
	for _, m := range headingRegex.FindAllStringSubmatch(md, -1) {
		s.Headings = append(s.Headings, core.Heading{
			Level: len(m[1]),
			Text:  strings.TrimSpace(m[2]),
		})
	}
	for _, m := range linkRegex.FindAllStringSubmatch(md, -1) {
		s.Links = append(s.Links, core.Link{Text: m[1], Href: m[2]})
	}
	s.CodeBlocks = strings.Count(md, "```") / 2

	// A list is a run of consecutive item lines; a blockquote a run of
	// quoted lines.
	inList, inQuote := false, false
	for _, line := range strings.Split(md, "\n") {
		item := listItemRegex.MatchString(line)
		if item && !inList {
			s.Lists++
		}
		inList = item

		quoted := strings.HasPrefix(line, ">")
		if quoted && !inQuote {
			s.Blockquotes++
		}
		inQuote = quoted
	}
	return s
}

var (
	emphasisRegex   = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
)

// PlainText removes common Markdown formatting to produce plain text.
func PlainText(md string) string {
	text := headingRegex.ReplaceAllString(md, "$2")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "```", "")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = blankLinesRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

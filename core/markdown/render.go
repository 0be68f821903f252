// Package markdown renders a parsed node tree as Markdown.
//
// Rendering is pure and never fails: every node kind has a defined,
// possibly empty, output.
package markdown

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gaurav-prasanna/htmd/core/node"
)

// Config controls rendering.
type Config struct {
	// IgnoreRendering lists kinds whose whole subtree renders as nothing.
	IgnoreRendering []node.Kind
}

// Ignores reports whether kind is listed in c.IgnoreRendering.
func (c Config) Ignores(kind node.Kind) bool {
	return slices.Contains(c.IgnoreRendering, kind)
}

// String renders n with the default Config.
func String(n *node.Node) string {
	return Render(n, Config{})
}

// Render converts n and its subtree to Markdown.
func Render(n *node.Node, cfg Config) string {
	var b strings.Builder
	render(&b, n, cfg)
	return b.String()
}

func render(b *strings.Builder, n *node.Node, cfg Config) {
	if n == nil || cfg.Ignores(n.Kind) {
		return
	}

	var tail string
	switch k := n.Kind; {
	case k.Level() > 0:
		b.WriteString(strings.Repeat("#", k.Level()))
		b.WriteByte(' ')
		tail = "\n"

	case k == node.Strong:
		b.WriteString("**")
		tail = "**"

	case k == node.Em:
		b.WriteString("*")
		tail = "*"

	case k == node.A:
		b.WriteByte('[')
		tail = "]"
		if v, ok := n.Attributes.Get("href"); ok {
			href := decodeHref(v.String())
			if strings.Contains(href, " ") {
				tail = "](<" + href + ">)"
			} else {
				tail = "](" + href + ")"
			}
		}

	case k == node.Ul:
		for _, c := range n.Children {
			b.WriteString(c.LeadingSpaces())
			b.WriteString("- ")
			render(b, c, Config{})
		}
		return

	case k == node.Ol:
		i := 1
		if v, ok := n.Attributes.Get("start"); ok {
			if start, ok := v.Int(); ok {
				i = start
			}
		}
		for _, c := range n.Children {
			b.WriteString(c.LeadingSpaces())
			b.WriteString(strconv.Itoa(i))
			b.WriteString(". ")
			render(b, c, Config{})
			i++
		}
		return

	case k == node.Li:
		if !n.HasChild(node.P) {
			tail = "\n"
		}

	case k == node.P:
		if len(n.Children) == 0 {
			return
		}
		tail = "\n"

	case k == node.Code:
		if lang, ok := codeLanguage(n.Attributes); ok {
			// No newline after the language; callers rely on this output.
			b.WriteString("```" + lang)
		} else {
			b.WriteString("```\n")
		}
		tail = "```\n"

	case k == node.Hr:
		b.WriteString("***\n")
		return

	case k == node.Br:
		b.WriteString("  \n")
		return

	case k == node.Text:
		if n.InSpecial(node.Blockquote) {
			b.WriteString("> ")
		}
		b.WriteString(n.Text)
		return

	case k == node.Title:
		return

	case k == node.Comment:
		b.WriteString("<!--" + n.Text + "-->")
		return

	case k.IsUnknown():
		b.WriteString("<" + k.TagName() + ">")
		tail = "</" + k.TagName() + ">"

		// HTML, Head, Body, Style, Link, Script, Meta, Div, Pre, Blockquote
		// and the root render only their children.
	}

	for _, c := range n.Children {
		render(b, c, cfg)
	}
	b.WriteString(tail)
}

// decodeHref percent-decodes a link destination. Escapes that are not two
// hex digits are copied through. The raw value is kept when the decoded
// bytes are not valid UTF-8.
func decodeHref(raw string) string {
	if !strings.Contains(raw, "%") {
		return raw
	}
	buf := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]) {
			buf = append(buf, unhex(raw[i+1])<<4|unhex(raw[i+2]))
			i += 2
			continue
		}
		buf = append(buf, raw[i])
	}
	if !utf8.Valid(buf) {
		return raw
	}
	return string(buf)
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	}
	return c - 'A' + 10
}

// codeLanguage returns the language named by a "language-*" class.
func codeLanguage(attrs *node.Attributes) (string, bool) {
	class, _ := attrs.Class()
	for _, c := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(c, "language-"); ok {
			return lang, true
		}
	}
	return "", false
}

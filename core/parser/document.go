package parser

import (
	"context"
	"strings"
	"unicode"

	"github.com/gaurav-prasanna/htmd/core/node"
)

// cancelCheckInterval is how many scan steps ParseContext takes between
// context checks.
const cancelCheckInterval = 1024

// Parse reads an HTML document into a tree.
//
// Newlines are removed before scanning, so text never contains them. Unclosed
// elements at the end of the input become extra top-level nodes, and closing
// tags are not matched against the element they close. When the document has
// exactly one top-level node it is returned as is; otherwise the top-level
// nodes are wrapped in a root node with the zero Kind.
//
// Errors are of type *ParseError; no partial tree is returned.
func Parse(html string) (*node.Node, error) {
	return ParseContext(context.Background(), html)
}

// ParseContext is Parse with cooperative cancellation for large inputs.
func ParseContext(ctx context.Context, html string) (*node.Node, error) {
	p := &docParser{input: strings.ReplaceAll(html, "\n", "")}
	return p.parse(ctx)
}

// MustParse is like Parse but panics on malformed input.
//
// Deprecated: use Parse and handle the error.
func MustParse(html string) *node.Node {
	n, err := Parse(html)
	if err != nil {
		panic("parsing html: " + err.Error())
	}
	return n
}

type docParser struct {
	input string
	pos   int
	stack nodeStack
	roots []*node.Node
}

func (p *docParser) parse(ctx context.Context) (*node.Node, error) {
	for steps := 0; p.pos < len(p.input); steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rest := p.input[p.pos:]
		var err error
		switch {
		case strings.HasPrefix(rest, "<!"):
			err = p.markup(rest)
		case rest[0] == '<':
			err = p.tag(rest)
		default:
			p.text(rest)
		}
		if err != nil {
			return nil, err
		}
	}

	// Whatever is still open becomes top-level, outermost first.
	p.roots = append(p.roots, p.stack...)
	p.stack = nil

	if len(p.roots) == 1 {
		return p.roots[0], nil
	}
	return &node.Node{Children: p.roots}, nil
}

// markup handles "<!" constructs: DOCTYPE declarations are skipped, anything
// else is a comment running to the next "-->".
func (p *docParser) markup(rest string) error {
	if len(rest) >= 9 && strings.EqualFold(rest[:9], "<!doctype") {
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return tagError(rest, MissingClosingBracket, p.pos)
		}
		p.pos += end + 1
		return nil
	}

	end := strings.Index(rest, "-->")
	if end < 0 {
		return tagError(rest, MissingClosingBracket, p.pos)
	}
	body := strings.TrimPrefix(rest[2:end], "--")
	p.attach(node.NewComment(body))
	p.pos += end + len("-->")
	return nil
}

func (p *docParser) tag(rest string) error {
	bracket := closingBracket(rest)
	if bracket < 0 {
		return tagError(rest, MissingClosingBracket, p.pos)
	}

	end := bracket
	selfClosing := rest[bracket-1] == '/'
	if selfClosing {
		end--
	}
	content := rest[1:end]

	name := content
	var attrs *node.Attributes
	if i := strings.IndexFunc(content, unicode.IsSpace); i >= 0 {
		name = content[:i]
		var err error
		if attrs, err = parseAttributes(content[i:], p.pos); err != nil {
			return err
		}
	}
	if name == "" {
		return tagError(content, MissingTagName, p.pos)
	}

	if strings.HasPrefix(rest, "</") {
		closed := p.stack.pop()
		if closed == nil {
			return tagError(rest[:bracket+1], MissingClosingBracket, p.pos)
		}
		p.appendChild(closed)
		p.pos += bracket + 1
		return nil
	}

	n := node.NewElement(node.KindOf(name), attrs)
	n.Inherit(p.stack.top())
	if selfClosing {
		p.appendChild(n)
	} else {
		p.stack.push(n)
	}
	p.pos += bracket + 1
	return nil
}

// text consumes the run up to the next '<'. Whitespace-only runs are dropped.
func (p *docParser) text(rest string) {
	end := strings.IndexByte(rest, '<')
	if end < 0 {
		end = len(rest)
	}
	if run := rest[:end]; strings.TrimSpace(run) != "" {
		p.attach(node.NewText(run))
	}
	p.pos += end
}

// attach adds a leaf created at the current depth.
func (p *docParser) attach(n *node.Node) {
	n.Inherit(p.stack.top())
	p.appendChild(n)
}

// appendChild adds a finished node to the open element, or makes it
// top-level when nothing is open.
func (p *docParser) appendChild(n *node.Node) {
	if parent := p.stack.top(); parent != nil {
		parent.Children = append(parent.Children, n)
		return
	}
	p.roots = append(p.roots, n)
}

// nodeStack is the stack of open elements.
type nodeStack []*node.Node

func (s *nodeStack) push(n *node.Node) {
	*s = append(*s, n)
}

// pop removes and returns the top node, or nil when s is empty.
func (s *nodeStack) pop() *node.Node {
	i := len(*s)
	if i == 0 {
		return nil
	}
	n := (*s)[i-1]
	*s = (*s)[:i-1]
	return n
}

// top returns the most recently pushed node, or nil if s is empty.
func (s *nodeStack) top() *node.Node {
	if i := len(*s); i > 0 {
		return (*s)[i-1]
	}
	return nil
}

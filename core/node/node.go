package node

import (
	"encoding/json"
	"slices"
	"strings"
)

// Node is an element, text run or comment in the parsed tree.
//
// Text is set only for Text and Comment nodes, which never have children.
// SpecialAncestors lists the Blockquote, Ul and Ol elements enclosing the
// node, outermost first; it is derived from the tree shape when the node is
// created and exists only to drive rendering.
type Node struct {
	Kind             Kind
	Text             string
	Attributes       *Attributes
	SpecialAncestors []Kind
	Children         []*Node
}

// NewText returns a text leaf.
func NewText(text string) *Node {
	return &Node{Kind: Text, Text: text}
}

// NewComment returns a comment leaf holding the raw comment body.
func NewComment(body string) *Node {
	return &Node{Kind: Comment, Text: body}
}

// NewElement returns an element node with the given children.
func NewElement(kind Kind, attrs *Attributes, children ...*Node) *Node {
	return &Node{Kind: kind, Attributes: attrs, Children: children}
}

// IsRoot reports whether n is the synthetic wrapper around several
// top-level nodes.
func (n *Node) IsRoot() bool { return n.Kind.IsZero() }

// Inherit sets n's special ancestors from its parent: the parent's list,
// extended with the parent's own kind when that kind is special. A nil
// parent leaves n without special ancestors.
func (n *Node) Inherit(parent *Node) {
	n.SpecialAncestors = nil
	if parent == nil {
		return
	}
	ancestors := slices.Clone(parent.SpecialAncestors)
	if parent.Kind.IsSpecial() {
		ancestors = append(ancestors, parent.Kind)
	}
	if len(ancestors) > 0 {
		n.SpecialAncestors = ancestors
	}
}

// InSpecial reports whether any of kinds encloses n.
func (n *Node) InSpecial(kinds ...Kind) bool {
	for _, k := range n.SpecialAncestors {
		if slices.Contains(kinds, k) {
			return true
		}
	}
	return false
}

// LeadingSpaces returns the indentation of a list item: two spaces for each
// enclosing Ul or Ol beyond the first.
func (n *Node) LeadingSpaces() string {
	lists := 0
	for _, k := range n.SpecialAncestors {
		if k == Ul || k == Ol {
			lists++
		}
	}
	if lists < 2 {
		return ""
	}
	return strings.Repeat("  ", lists-1)
}

// HasChild reports whether a direct child of n has the given kind.
func (n *Node) HasChild(kind Kind) bool {
	for _, c := range n.Children {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first in document order. When fn
// returns false the children of the visited node are skipped.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// TextContent concatenates the text of all Text descendants of n.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Kind == Text {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

type jsonNode struct {
	Kind             string      `json:"kind,omitempty"`
	Text             *string     `json:"text,omitempty"`
	Attributes       *Attributes `json:"attributes,omitempty"`
	SpecialAncestors []Kind      `json:"special_ancestors,omitempty"`
	Children         []*Node     `json:"children,omitempty"`
}

// MarshalJSON encodes n and its subtree.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := jsonNode{
		Kind:             n.Kind.String(),
		Attributes:       n.Attributes,
		SpecialAncestors: n.SpecialAncestors,
		Children:         n.Children,
	}
	if n.Kind == Text || n.Kind == Comment {
		out.Text = &n.Text
	}
	return json.Marshal(out)
}

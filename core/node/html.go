package node

import "strings"

// HTML serializes the tree rooted at n back into HTML the parser accepts.
// Elements without children are written self-closing, boolean attributes
// by presence only, and attributes in name order.
//
// The output does not escape anything: text containing '<' and attribute
// values containing '"' do not survive a round trip.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	switch {
	case n.IsRoot():
		for _, c := range n.Children {
			c.writeHTML(b)
		}
		return
	case n.Kind == Text:
		b.WriteString(n.Text)
		return
	case n.Kind == Comment:
		b.WriteString("<!--")
		b.WriteString(n.Text)
		b.WriteString("-->")
		return
	}

	name := n.Kind.TagName()
	b.WriteByte('<')
	b.WriteString(name)
	for _, attr := range n.Attributes.Names() {
		v, _ := n.Attributes.Get(attr)
		b.WriteByte(' ')
		b.WriteString(attr)
		if v.Type() == TypeBool && v.String() == "true" {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(v.String())
		b.WriteByte('"')
	}
	if len(n.Children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, c := range n.Children {
		c.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

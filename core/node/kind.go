// Package node defines the document tree produced by the parser and consumed
// by the Markdown renderer.
package node

import (
	"fmt"
	"strings"
)

type tag uint8

const (
	tagNone tag = iota
	tagHTML
	tagHead
	tagBody
	tagTitle
	tagStyle
	tagLink
	tagScript
	tagMeta
	tagH1
	tagH2
	tagH3
	tagH4
	tagH5
	tagH6
	tagP
	tagDiv
	tagBlockquote
	tagPre
	tagHr
	tagBr
	tagStrong
	tagEm
	tagA
	tagUl
	tagOl
	tagLi
	tagCode
	tagText
	tagComment
	tagUnknown
)

// Kind identifies the semantic role of a node. The zero Kind is reserved for
// the synthetic root that wraps multiple top-level nodes.
type Kind struct {
	tag  tag
	name string // tag name, Unknown kinds only
}

// The closed set of kinds. Any other tag name classifies as Unknown.
var (
	HTML       = Kind{tag: tagHTML}
	Head       = Kind{tag: tagHead}
	Body       = Kind{tag: tagBody}
	Title      = Kind{tag: tagTitle}
	Style      = Kind{tag: tagStyle}
	Link       = Kind{tag: tagLink}
	Script     = Kind{tag: tagScript}
	Meta       = Kind{tag: tagMeta}
	H1         = Kind{tag: tagH1}
	H2         = Kind{tag: tagH2}
	H3         = Kind{tag: tagH3}
	H4         = Kind{tag: tagH4}
	H5         = Kind{tag: tagH5}
	H6         = Kind{tag: tagH6}
	P          = Kind{tag: tagP}
	Div        = Kind{tag: tagDiv}
	Blockquote = Kind{tag: tagBlockquote}
	Pre        = Kind{tag: tagPre}
	Hr         = Kind{tag: tagHr}
	Br         = Kind{tag: tagBr}
	Strong     = Kind{tag: tagStrong}
	Em         = Kind{tag: tagEm}
	A          = Kind{tag: tagA}
	Ul         = Kind{tag: tagUl}
	Ol         = Kind{tag: tagOl}
	Li         = Kind{tag: tagLi}
	Code       = Kind{tag: tagCode}
	Text       = Kind{tag: tagText}
	Comment    = Kind{tag: tagComment}
)

var tagNames = map[tag]string{
	tagHTML:       "html",
	tagHead:       "head",
	tagBody:       "body",
	tagTitle:      "title",
	tagStyle:      "style",
	tagLink:       "link",
	tagScript:     "script",
	tagMeta:       "meta",
	tagH1:         "h1",
	tagH2:         "h2",
	tagH3:         "h3",
	tagH4:         "h4",
	tagH5:         "h5",
	tagH6:         "h6",
	tagP:          "p",
	tagDiv:        "div",
	tagBlockquote: "blockquote",
	tagPre:        "pre",
	tagHr:         "hr",
	tagBr:         "br",
	tagStrong:     "strong",
	tagEm:         "em",
	tagA:          "a",
	tagUl:         "ul",
	tagOl:         "ol",
	tagLi:         "li",
	tagCode:       "code",
	tagText:       "#text",
	tagComment:    "#comment",
}

// byTagName maps element names to their kinds. Text and Comment are leaf
// kinds and never come from a tag name.
var byTagName = func() map[string]Kind {
	m := make(map[string]Kind, len(tagNames))
	for t, name := range tagNames {
		if t == tagText || t == tagComment {
			continue
		}
		m[name] = Kind{tag: t}
	}
	return m
}()

// Unknown returns the fallback kind for a tag outside the closed set.
func Unknown(name string) Kind {
	return Kind{tag: tagUnknown, name: name}
}

// KindOf classifies a tag name, ignoring case. It never fails: names
// outside the closed set become Unknown(lowercased name).
func KindOf(tagName string) Kind {
	lower := strings.ToLower(tagName)
	if k, ok := byTagName[lower]; ok {
		return k
	}
	return Unknown(lower)
}

// ParseKind is KindOf extended with the "#text" and "#comment" leaf names.
// It is used where kinds are named by users, e.g. in configuration files.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return Kind{}, fmt.Errorf("empty node kind")
	case "#text":
		return Text, nil
	case "#comment":
		return Comment, nil
	}
	return KindOf(name), nil
}

// IsZero reports whether k is the synthetic root kind.
func (k Kind) IsZero() bool { return k.tag == tagNone }

// IsUnknown reports whether k is a fallback kind.
func (k Kind) IsUnknown() bool { return k.tag == tagUnknown }

// IsSpecial reports whether descendants of a k element render differently:
// blockquotes prefix their text, lists indent nested lists.
func (k Kind) IsSpecial() bool {
	return k.tag == tagBlockquote || k.tag == tagUl || k.tag == tagOl
}

// Level returns the heading level 1-6, or 0 when k is not a heading.
func (k Kind) Level() int {
	if k.tag >= tagH1 && k.tag <= tagH6 {
		return int(k.tag-tagH1) + 1
	}
	return 0
}

// TagName returns the element name of k, or "" for the root, Text and
// Comment kinds.
func (k Kind) TagName() string {
	switch k.tag {
	case tagNone, tagText, tagComment:
		return ""
	case tagUnknown:
		return k.name
	}
	return tagNames[k.tag]
}

// String returns the element name, "#text" or "#comment".
func (k Kind) String() string {
	if k.tag == tagUnknown {
		return k.name
	}
	return tagNames[k.tag]
}

// Equal reports whether k and o are the same kind.
func (k Kind) Equal(o Kind) bool { return k == o }

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text decodes to
// the root kind.
func (k *Kind) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*k = Kind{}
		return nil
	}
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

package parser

import (
	"strings"
	"unicode"

	"github.com/gaurav-prasanna/htmd/core/node"
)

// parseAttributes reads the text between a tag name and the closing bracket.
// offset is where the tag starts and is reported in errors. Blank text
// yields nil attributes.
func parseAttributes(text string, offset int) (*node.Attributes, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	attrs := node.NewAttributes()
	var (
		key, value strings.Builder
		inQuotes   bool
		unquoted   bool // after '=', reading a value up to whitespace
	)

	flush := func() {
		if key.Len() > 0 && value.Len() > 0 {
			attrs.Set(key.String(), node.StringValue(value.String()))
		}
		key.Reset()
		value.Reset()
	}

	for _, r := range text {
		if inQuotes {
			if r == '"' {
				flush()
				inQuotes = false
				continue
			}
			value.WriteRune(r)
			continue
		}

		switch {
		case r == '"':
			if key.Len() == 0 {
				return nil, tagError(text, MissingAttributeName, offset)
			}
			inQuotes = true
			unquoted = false

		case unicode.IsSpace(r):
			if unquoted {
				// whitespace between '=' and the value
				if value.Len() == 0 {
					continue
				}
				flush()
				unquoted = false
				continue
			}
			if key.Len() > 0 {
				attrs.Set(key.String(), node.BoolValue(true))
				key.Reset()
			}

		case r == '=' && !unquoted:
			if key.Len() == 0 {
				return nil, tagError(text, MissingAttributeName, offset)
			}
			unquoted = true

		case unquoted:
			value.WriteRune(r)

		default:
			key.WriteRune(r)
		}
	}

	switch {
	case inQuotes:
		return nil, tagError(value.String(), MissingQuotationMark, offset)
	case unquoted && value.Len() == 0:
		return nil, tagError(text, MissingAttributeValue, offset)
	case unquoted:
		flush()
	case key.Len() > 0:
		attrs.Set(key.String(), node.BoolValue(true))
	}

	if attrs.IsEmpty() {
		return nil, nil
	}
	return attrs, nil
}

// Package parser turns HTML text into a node tree in a single pass over the
// input, using a stack of open elements. It tolerates unclosed and
// mismatched tags but reports tags and attributes it cannot read.
package parser

// closingBracket returns the index of the '>' that ends the tag at the start
// of s, or -1. A '>' inside a quoted attribute value does not count: quote
// characters push onto a stack, or pop it when they match its top.
func closingBracket(s string) int {
	var quotes []byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			if n := len(quotes); n > 0 && quotes[n-1] == c {
				quotes = quotes[:n-1]
			} else {
				quotes = append(quotes, c)
			}
		case '>':
			if len(quotes) == 0 {
				return i
			}
		}
	}
	return -1
}

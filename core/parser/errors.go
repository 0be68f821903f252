package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by errors.Is against a *ParseError.
var (
	ErrMalformedTag       = errors.New("malformed tag")
	ErrMalformedAttribute = errors.New("malformed attribute")
)

// ErrorKind is the class of construct that failed to parse.
type ErrorKind uint8

const (
	MalformedTag ErrorKind = iota + 1
	MalformedAttribute
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedTag:
		return "Malformed tag"
	case MalformedAttribute:
		return "Malformed attribute"
	}
	return "Malformed input"
}

// Reason says what was wrong with the construct.
type Reason uint8

const (
	MissingClosingBracket Reason = iota + 1
	MissingTagName
	MissingQuotationMark
	MissingAttributeName
	MissingAttributeValue
)

// Kind returns the error class a reason belongs to.
func (r Reason) Kind() ErrorKind {
	switch r {
	case MissingClosingBracket, MissingTagName:
		return MalformedTag
	}
	return MalformedAttribute
}

func (r Reason) String() string {
	switch r {
	case MissingClosingBracket:
		return "Missing closing bracket"
	case MissingTagName:
		return "Missing tag name"
	case MissingQuotationMark:
		return "Missing quotation mark"
	case MissingAttributeName:
		return "Missing attribute name"
	case MissingAttributeValue:
		return "Missing attribute value"
	}
	return "Unknown reason"
}

// ParseError reports malformed input. Offset is the byte index, in the
// newline-stripped input, where the failing tag starts.
type ParseError struct {
	Raw    string
	Reason Reason
	Offset int
}

// Kind returns whether a tag or an attribute was malformed.
func (e *ParseError) Kind() ErrorKind { return e.Reason.Kind() }

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s - %s at around index %d", e.Kind(), e.Raw, e.Reason, e.Offset)
}

// Unwrap returns ErrMalformedTag or ErrMalformedAttribute.
func (e *ParseError) Unwrap() error {
	if e.Kind() == MalformedTag {
		return ErrMalformedTag
	}
	return ErrMalformedAttribute
}

func tagError(raw string, reason Reason, offset int) *ParseError {
	return &ParseError{Raw: raw, Reason: reason, Offset: offset}
}

package node

import (
	"encoding/json"
	"sort"
	"strconv"
)

// ValueType tags the variant held by a Value.
type ValueType uint8

const (
	TypeString ValueType = iota
	TypeBool
	TypeNumber
)

// Value is an attribute value: a string, a boolean or a number.
type Value struct {
	typ ValueType
	str string
	b   bool
	num int
}

// StringValue returns a string attribute value.
func StringValue(s string) Value { return Value{typ: TypeString, str: s} }

// BoolValue returns a boolean attribute value. The parser produces true for
// attributes written without a value, e.g. `disabled`.
func BoolValue(b bool) Value { return Value{typ: TypeBool, b: b} }

// NumberValue returns a numeric attribute value.
func NumberValue(n int) Value { return Value{typ: TypeNumber, num: n} }

// Type returns the variant held by v.
func (v Value) Type() ValueType { return v.typ }

// String returns the display form of v.
func (v Value) String() string {
	switch v.typ {
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeNumber:
		return strconv.Itoa(v.num)
	}
	return v.str
}

// Int coerces v to a non-negative integer. Strings are parsed, booleans
// never convert.
func (v Value) Int() (int, bool) {
	switch v.typ {
	case TypeNumber:
		return v.num, true
	case TypeString:
		n, err := strconv.ParseUint(v.str, 10, 31)
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// Equal reports whether v and o hold the same variant and value.
func (v Value) Equal(o Value) bool { return v == o }

// MarshalJSON encodes v as a JSON string, boolean or number.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeBool:
		return json.Marshal(v.b)
	case TypeNumber:
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// Attributes maps attribute names, case-sensitive as written, to values.
// id and class are kept apart from the rest because rendering depends on
// them.
type Attributes struct {
	id, class       string
	hasID, hasClass bool
	values          map[string]Value
}

// NewAttributes returns an empty attribute set.
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]Value)}
}

// AttributesOf builds an attribute set from a map, applying the same rules
// as repeated calls to Set.
func AttributesOf(values map[string]Value) *Attributes {
	a := NewAttributes()
	for name, v := range values {
		a.Set(name, v)
	}
	return a
}

// Set stores v under name. Later writes win. id and class are stored in
// their display form.
func (a *Attributes) Set(name string, v Value) {
	switch name {
	case "id":
		a.id, a.hasID = v.String(), true
	case "class":
		a.class, a.hasClass = v.String(), true
	default:
		if a.values == nil {
			a.values = make(map[string]Value)
		}
		a.values[name] = v
	}
}

// Get returns the value stored under name.
func (a *Attributes) Get(name string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	switch name {
	case "id":
		return StringValue(a.id), a.hasID
	case "class":
		return StringValue(a.class), a.hasClass
	}
	v, ok := a.values[name]
	return v, ok
}

// ID returns the id attribute.
func (a *Attributes) ID() (string, bool) {
	if a == nil {
		return "", false
	}
	return a.id, a.hasID
}

// Class returns the class attribute.
func (a *Attributes) Class() (string, bool) {
	if a == nil {
		return "", false
	}
	return a.class, a.hasClass
}

// Len returns the number of attributes, id and class included.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	n := len(a.values)
	if a.hasID {
		n++
	}
	if a.hasClass {
		n++
	}
	return n
}

// IsEmpty reports whether no attribute is set.
func (a *Attributes) IsEmpty() bool { return a.Len() == 0 }

// Names returns all attribute names in sorted order.
func (a *Attributes) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, a.Len())
	if a.hasID {
		names = append(names, "id")
	}
	if a.hasClass {
		names = append(names, "class")
	}
	for name := range a.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether a and o hold the same attributes.
func (a *Attributes) Equal(o *Attributes) bool {
	if a.IsEmpty() || o.IsEmpty() {
		return a.IsEmpty() && o.IsEmpty() && (a == nil) == (o == nil)
	}
	if a.Len() != o.Len() {
		return false
	}
	for _, name := range a.Names() {
		av, _ := a.Get(name)
		ov, ok := o.Get(name)
		if !ok || av != ov {
			return false
		}
	}
	return true
}

// MarshalJSON encodes a as a flat JSON object.
func (a *Attributes) MarshalJSON() ([]byte, error) {
	out := make(map[string]Value, a.Len())
	for _, name := range a.Names() {
		out[name], _ = a.Get(name)
	}
	return json.Marshal(out)
}

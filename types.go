// Package pdx parses the brace-delimited script format used by strategy-game
// mods into ordered, typed documents.
package pdx

import (
	"fmt"
	"strconv"
)

// EnumKey holds the bare tokens of a block that also contains key/value pairs.
// A block made only of bare tokens is flattened to a List instead.
const EnumKey = "enum"

// Value is one of String, Integer, Float, Boolean, Date, *Document, List or RawText.
type Value interface {
	isValue()
}

// String is free text, from a quoted literal or an unrecognized bare word.
type String string

// Integer is a numeric literal without a decimal point.
type Integer int64

// Float is a numeric literal with a decimal point.
type Float float64

// Boolean is the literal yes or no.
type Boolean bool

// Date is a year.month.day literal.
type Date struct {
	Year  int
	Month int
	Day   int
}

// List is an ordered sequence of values: bare tokens of a block, the values
// of a repeated key, or both nested in each other.
type List []Value

// RawText is the verbatim content of a condition block. It is never parsed further.
type RawText string

func (String) isValue()    {}
func (Integer) isValue()   {}
func (Float) isValue()     {}
func (Boolean) isValue()   {}
func (Date) isValue()      {}
func (List) isValue()      {}
func (RawText) isValue()   {}
func (*Document) isValue() {}

func (d Date) String() string {
	return fmt.Sprintf("%d.%d.%d", d.Year, d.Month, d.Day)
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// ParseDate parses a year.month.day literal.
func ParseDate(s string) (Date, bool) {
	if !isDateLiteral(s) {
		return Date{}, false
	}
	var parts [3]int
	field := 0
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '.' {
			continue
		}
		n, err := strconv.Atoi(s[start:i])
		if err != nil {
			return Date{}, false
		}
		parts[field] = n
		field++
		start = i + 1
	}
	return Date{Year: parts[0], Month: parts[1], Day: parts[2]}, true
}

// Node is a key with its value inside a Document.
type Node struct {
	Key   string
	Value Value
}

// Document is an ordered mapping from keys to values. A *Document is also the
// Block variant of Value.
//
// Documents returned by the parser have unique keys and are never modified
// afterwards, so they can be shared between goroutines.
type Document struct {
	Nodes []Node
	index map[string]int
}

// NewDocument builds a document from nodes. Lookups return the first node
// with a given key.
func NewDocument(nodes ...Node) *Document {
	d := &Document{Nodes: nodes}
	d.reindex()
	return d
}

func (d *Document) reindex() {
	d.index = make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		if _, ok := d.index[n.Key]; !ok {
			d.index[n.Key] = i
		}
	}
}

// Len returns the number of keys.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Nodes)
}

// Keys returns the keys in first-seen order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		keys[i] = n.Key
	}
	return keys
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (Value, bool) {
	if d == nil {
		return nil, false
	}
	if d.index != nil {
		i, ok := d.index[key]
		if !ok {
			return nil, false
		}
		return d.Nodes[i].Value, true
	}
	for _, n := range d.Nodes {
		if n.Key == key {
			return n.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// All returns every value of key: the elements of a List, or the single value.
func (d *Document) All(key string) []Value {
	v, ok := d.Get(key)
	if !ok {
		return nil
	}
	if l, ok := v.(List); ok {
		return l
	}
	return []Value{v}
}

// String returns the text of a String value under key.
func (d *Document) String(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

// Int returns an Integer value under key.
func (d *Document) Int(key string) (int64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(Integer)
	return int64(i), ok
}

// Bool returns a Boolean value under key.
func (d *Document) Bool(key string) (bool, bool) {
	v, ok := d.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(Boolean)
	return bool(b), ok
}

// Block returns a nested document under key.
func (d *Document) Block(key string) (*Document, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.(*Document)
	return b, ok
}

// List returns a List value under key.
func (d *Document) List(key string) (List, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	l, ok := v.(List)
	return l, ok
}

// Text renders a scalar value the way it appears in a script file, without quotes.
// Blocks and lists render as their script form.
func Text(v Value) string {
	switch x := v.(type) {
	case String:
		return string(x)
	case Integer:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return formatFloat(float64(x))
	case Boolean:
		if x {
			return "yes"
		}
		return "no"
	case Date:
		return x.String()
	case RawText:
		return string(x)
	case nil:
		return ""
	default:
		var w writer
		if err := w.value(v, 0); err != nil {
			return ""
		}
		return w.String()
	}
}

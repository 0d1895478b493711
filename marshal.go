package pdx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Marshal writes doc in the script format. Parsing the output gives back a
// document equal to doc.
func Marshal(doc *Document) ([]byte, error) {
	s, err := MarshalString(doc)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// MarshalString is Marshal returning a string.
func MarshalString(doc *Document) (string, error) {
	var w writer
	if err := w.nodes(doc, 0); err != nil {
		return "", err
	}
	return w.String(), nil
}

type writer struct {
	strings.Builder
}

func (w *writer) indent(n int) {
	for i := 0; i < n; i++ {
		w.WriteByte('\t')
	}
}

func (w *writer) nodes(doc *Document, indent int) error {
	for _, n := range doc.Nodes {
		w.indent(indent)
		key, err := formatKey(n.Key)
		if err != nil {
			return fmt.Errorf("key %q: %w", n.Key, err)
		}
		w.WriteString(key)
		w.WriteString(" = ")
		if err := w.value(n.Value, indent); err != nil {
			return fmt.Errorf("%s: %w", n.Key, err)
		}
		w.WriteByte('\n')
	}
	return nil
}

func (w *writer) value(v Value, indent int) error {
	switch x := v.(type) {
	case *Document:
		if x.Len() == 0 {
			w.WriteString("{ }")
			return nil
		}
		w.WriteString("{\n")
		if err := w.nodes(x, indent+1); err != nil {
			return err
		}
		w.indent(indent)
		w.WriteByte('}')
	case List:
		return w.list(x, indent)
	case RawText:
		w.WriteString("{ ")
		w.WriteString(string(x))
		w.WriteString(" }")
	case String:
		s, err := quoteIfNeeded(string(x))
		if err != nil {
			return err
		}
		w.WriteString(s)
	case nil:
		return errors.New("nil value")
	default:
		w.WriteString(Text(x))
	}
	return nil
}

// list writes scalars inline and anything nested one item per line.
func (w *writer) list(l List, indent int) error {
	if len(l) == 0 {
		w.WriteString("{ }")
		return nil
	}
	inline := true
	for _, item := range l {
		switch item.(type) {
		case *Document, List, RawText:
			inline = false
		}
	}
	if inline {
		w.WriteString("{")
		for _, item := range l {
			w.WriteByte(' ')
			if err := w.value(item, indent); err != nil {
				return err
			}
		}
		w.WriteString(" }")
		return nil
	}

	w.WriteString("{\n")
	for _, item := range l {
		w.indent(indent + 1)
		if err := w.value(item, indent+1); err != nil {
			return err
		}
		w.WriteByte('\n')
	}
	w.indent(indent)
	w.WriteByte('}')
	return nil
}

// formatKey leaves any word bare: keys are never coerced.
func formatKey(k string) (string, error) {
	if isBareWord(k) {
		return k, nil
	}
	return quoteIfNeeded(k)
}

// quoteIfNeeded leaves a word bare when it reads back as the same String and
// quotes it otherwise. Braces are rejected: the brace matcher counts them
// even inside quotes.
func quoteIfNeeded(s string) (string, error) {
	if strings.ContainsRune(s, '"') {
		return "", errors.New("text contains a double quote")
	}
	if strings.ContainsAny(s, "{}") {
		return "", fmt.Errorf("text %q contains a brace", s)
	}
	if isBareWord(s) {
		if _, isString := Coerce(s).(String); isString {
			return s, nil
		}
	}
	return `"` + s + `"`, nil
}

func isBareWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == utf8.RuneError || !isWordRune(r) {
			return false
		}
	}
	return true
}

// formatFloat always keeps a decimal point so the literal reads back as a Float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Equal reports whether two values have the same structure and content.
// Document key order matters.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case *Document:
		y, ok := b.(*Document)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.Nodes {
			if x.Nodes[i].Key != y.Nodes[i].Key || !Equal(x.Nodes[i].Value, y.Nodes[i].Value) {
				return false
			}
		}
		return true
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

package pdx

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON writes the document as a JSON object in key order. Dates and
// raw condition text become strings.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch x := v.(type) {
	case *Document:
		if x == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, n := range x.Nodes {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case List:
		buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	var out any
	switch x := v.(type) {
	case String:
		out = string(x)
	case Integer:
		out = int64(x)
	case Float:
		out = float64(x)
	case Boolean:
		out = bool(x)
	case Date:
		out = x.String()
	case RawText:
		out = string(x)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

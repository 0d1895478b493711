package pdx

import (
	"strconv"
	"strings"
)

// Coerce maps a bare literal to its typed value. It never fails: anything that
// is not a date, a boolean or a number is a String.
func Coerce(literal string) Value {
	if d, ok := ParseDate(literal); ok {
		return d
	}
	switch literal {
	case "yes":
		return Boolean(true)
	case "no":
		return Boolean(false)
	}
	if isNumberLiteral(literal) {
		if strings.Contains(literal, ".") {
			if f, err := strconv.ParseFloat(literal, 64); err == nil {
				return Float(f)
			}
			return String(literal)
		}
		if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return Integer(i)
		}
	}
	return String(literal)
}

// tokenValue coerces a scalar token. Quoted text is always a String.
func tokenValue(t token) Value {
	switch t.kind {
	case tokString:
		return String(t.text)
	case tokDate:
		if d, ok := ParseDate(t.text); ok {
			return d
		}
		return String(t.text)
	default:
		return Coerce(t.text)
	}
}

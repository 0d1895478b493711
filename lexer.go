package pdx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenKind is the closed set of lexical units of the script format.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokDate
	tokSymbol
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokDate:
		return "date"
	case tokSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// token is one lexical unit. For strings, text excludes the quotes.
// start and end are offsets into the normalized text.
type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

// scalar reports whether the token can be a key or a bare value.
func (t token) scalar() bool {
	switch t.kind {
	case tokIdent, tokNumber, tokString, tokDate:
		return true
	}
	return false
}

// comparison reports whether the token is one of < > <= >=.
func (t token) comparison() bool {
	if t.kind != tokSymbol {
		return false
	}
	switch t.text {
	case "<", ">", "<=", ">=":
		return true
	}
	return false
}

// lexer scans text[pos:end]. It is a value type so callers can copy it to peek.
type lexer struct {
	text string
	pos  int
	end  int
}

func newLexer(text string, start, end int) lexer {
	return lexer{text: text, pos: start, end: end}
}

func (l *lexer) peek() token {
	saved := *l
	t := l.next()
	*l = saved
	return t
}

func (l *lexer) next() token {
	for l.pos < l.end && isSpace(l.text[l.pos]) {
		l.pos++
	}
	if l.pos >= l.end {
		return token{kind: tokEOF, start: l.end, end: l.end}
	}

	start := l.pos
	c := l.text[start]
	switch c {
	case '"':
		if n := strings.IndexByte(l.text[start+1:l.end], '"'); n >= 0 {
			l.pos = start + n + 2
			return token{kind: tokString, text: l.text[start+1 : start+1+n], start: start, end: l.pos}
		}
		// Unterminated quote: the quote alone is a symbol and gets skipped.
		l.pos++
		return token{kind: tokSymbol, text: `"`, start: start, end: l.pos}
	case '{', '}':
		l.pos++
		return token{kind: tokSymbol, text: l.text[start:l.pos], start: start, end: l.pos}
	case '<', '>', '=', '!':
		l.pos++
		if l.pos < l.end && l.text[l.pos] == '=' {
			l.pos++
		}
		return token{kind: tokSymbol, text: l.text[start:l.pos], start: start, end: l.pos}
	}

	for l.pos < l.end {
		r, size := utf8.DecodeRuneInString(l.text[l.pos:l.end])
		if !isWordRune(r) {
			break
		}
		l.pos += size
	}
	if l.pos == start {
		_, size := utf8.DecodeRuneInString(l.text[start:l.end])
		l.pos += size
		return token{kind: tokSymbol, text: l.text[start:l.pos], start: start, end: l.pos}
	}

	word := l.text[start:l.pos]
	kind := tokIdent
	switch {
	case isDateLiteral(word):
		kind = tokDate
	case isNumberLiteral(word):
		kind = tokNumber
	}
	return token{kind: kind, text: word, start: start, end: l.pos}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '_', '.', '-', '+', ':', '@', '\'', '$':
		return true
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isDateLiteral matches digits.digits.digits.
func isDateLiteral(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if !isDigits(p) {
			return false
		}
	}
	return true
}

// isNumberLiteral matches an optionally signed integer or decimal.
func isNumberLiteral(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	intPart, frac, hasDot := strings.Cut(s, ".")
	if !isDigits(intPart) {
		return false
	}
	return !hasDot || isDigits(frac)
}

// matchBrace returns the offset of the } closing the { at open, or -1.
// Every brace counts, including braces inside quoted strings.
func matchBrace(text string, open, end int) int {
	depth := 0
	for i := open; i < end; i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

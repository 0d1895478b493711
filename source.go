package pdx

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// source is the normalized text of one input: comments removed and every
// whitespace run collapsed to a single space.
type source struct {
	path  string
	text  string
	lines []lineStart
}

// lineStart maps an offset of the normalized text back to its source line.
type lineStart struct {
	offset int
	line   int
}

// DecodeText turns raw file bytes into text. A UTF-8 byte order mark is
// dropped; bytes that are not valid UTF-8 are read as Windows-1252, the
// encoding of older game files.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
		if err != nil {
			return string(data)
		}
		return string(out)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// preprocess strips comments and collapses whitespace into one stream.
func preprocess(path, text string) *source {
	src := &source{path: path}
	text = strings.TrimPrefix(text, "\uFEFF")

	var b strings.Builder
	b.Grow(len(text))
	inQuote := false
	for i, line := range strings.Split(text, "\n") {
		var code string
		code, inQuote = stripComment(line, inQuote)
		fields := strings.Fields(code)
		if len(fields) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		src.lines = append(src.lines, lineStart{offset: b.Len(), line: i + 1})
		for j, f := range fields {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(f)
		}
	}
	src.text = b.String()
	return src
}

// stripComment drops everything from the first # outside double quotes.
// inQuote is the quote state at the start of the line; the state at its end
// is returned so that quoted strings may span lines.
func stripComment(line string, inQuote bool) (string, bool) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuote = !inQuote
		case '#':
			if !inQuote {
				return line[:i], false
			}
		}
	}
	return line, inQuote
}

// lineAt returns the source line that produced the normalized offset.
func (s *source) lineAt(offset int) int {
	i := sort.Search(len(s.lines), func(i int) bool {
		return s.lines[i].offset > offset
	})
	if i == 0 {
		return 1
	}
	return s.lines[i-1].line
}

package pdx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// DefaultMaxDepth is the nesting limit of a parser created with NewParser.
const DefaultMaxDepth = 128

// Parser reads script-format text into documents. A Parser holds only
// configuration and is safe for concurrent use.
type Parser struct {
	maxDepth int
	logger   *slog.Logger
}

// NewParser creates a Parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
}

// WithMaxDepth sets how deep blocks may nest before ErrDepthExceeded.
func (p *Parser) WithMaxDepth(n int) *Parser {
	if n > 0 {
		p.maxDepth = n
	}
	return p
}

// WithLogger sets the logger used for skipped input.
func (p *Parser) WithLogger(l *slog.Logger) *Parser {
	if l != nil {
		p.logger = l
	}
	return p
}

var defaultParser = NewParser()

// ParseFile parses a file with the default parser.
func ParseFile(path string) (*Document, error) {
	return defaultParser.ParseFile(path)
}

// ParseString parses text with the default parser.
func ParseString(text string) (*Document, error) {
	return defaultParser.ParseString(text)
}

// ParseFile reads and parses a file. A missing file yields an error matching
// ErrNotFound.
func (p *Parser) ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.parse(path, DecodeText(data))
}

// ParseReader parses everything read from r.
func (p *Parser) ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return p.ParseBytes(data)
}

// ParseBytes parses raw file content.
func (p *Parser) ParseBytes(data []byte) (*Document, error) {
	return p.parse("", DecodeText(data))
}

// ParseString parses text.
func (p *Parser) ParseString(text string) (*Document, error) {
	return p.parse("", text)
}

func (p *Parser) parse(path, text string) (*Document, error) {
	st := &parseState{
		src:      preprocess(path, text),
		maxDepth: p.maxDepth,
		logger:   p.logger,
	}
	raw, err := st.parseBlock(0, len(st.src.text), 0)
	if err != nil {
		return nil, err
	}
	return raw.document(), nil
}

// parseState carries one parse over one source.
type parseState struct {
	src      *source
	maxDepth int
	logger   *slog.Logger
}

func (st *parseState) errorf(offset int, sentinel error, format string, args ...any) error {
	return &ParseError{
		Path:    st.src.path,
		Line:    st.src.lineAt(offset),
		Message: fmt.Sprintf(format, args...) + ": " + sentinel.Error(),
		Err:     sentinel,
	}
}

// parseBlock parses the entries of text[start:end], which lies between the
// braces of one block (or is the whole source at depth 0).
func (st *parseState) parseBlock(start, end, depth int) (*rawBlock, error) {
	if depth > st.maxDepth {
		return nil, st.errorf(start, ErrDepthExceeded, "block nested %d levels deep", depth)
	}

	block := &rawBlock{}
	lx := newLexer(st.src.text, start, end)
	for {
		t := lx.next()
		switch {
		case t.kind == tokEOF:
			return block, nil

		case t.is(tokSymbol, "}"):
			return nil, st.errorf(t.start, ErrUnmatchedBrace, "unexpected '}'")

		case t.is(tokSymbol, "{"):
			v, next, err := st.parseNested(t, end, depth)
			if err != nil {
				return nil, err
			}
			block.addEnum(v)
			lx.pos = next

		case t.scalar():
			if !lx.peek().is(tokSymbol, "=") {
				block.addEnum(tokenValue(t))
				continue
			}
			lx.next()
			v, ok, err := st.parseValue(&lx, end, depth)
			if err != nil {
				return nil, err
			}
			if !ok {
				st.skip(t, "key without value")
				continue
			}
			block.add(t.text, v)

		default:
			st.skip(t, "unexpected symbol")
		}
	}
}

// parseValue reads the value after "key =". ok is false when no value follows.
func (st *parseState) parseValue(lx *lexer, end, depth int) (Value, bool, error) {
	t := lx.peek()
	switch {
	case t.is(tokSymbol, "{"):
		lx.next()
		v, next, err := st.parseNested(t, end, depth)
		if err != nil {
			return nil, false, err
		}
		lx.pos = next
		return v, true, nil
	case t.scalar():
		lx.next()
		return tokenValue(t), true, nil
	default:
		return nil, false, nil
	}
}

// parseNested parses the block opened by the { token and returns its value
// and the offset just past its closing brace.
func (st *parseState) parseNested(open token, end, depth int) (Value, int, error) {
	closeAt := matchBrace(st.src.text, open.start, end)
	if closeAt < 0 {
		return nil, 0, st.errorf(open.start, ErrUnmatchedBrace, "block is never closed")
	}
	if isCondition(st.src.text, open.end, closeAt) {
		return RawText(strings.TrimSpace(st.src.text[open.end:closeAt])), closeAt + 1, nil
	}
	raw, err := st.parseBlock(open.end, closeAt, depth+1)
	if err != nil {
		return nil, 0, err
	}
	return raw.blockValue(), closeAt + 1, nil
}

// isCondition reports whether a block starts with "identifier op number",
// op being one of < > <= >=. Such blocks are kept verbatim.
func isCondition(text string, start, end int) bool {
	lx := newLexer(text, start, end)
	if lx.next().kind != tokIdent {
		return false
	}
	if !lx.next().comparison() {
		return false
	}
	return lx.next().kind == tokNumber
}

func (st *parseState) skip(t token, reason string) {
	st.logger.Debug("pdx: skipping input",
		"path", st.src.path,
		"line", st.src.lineAt(t.start),
		"token", t.text,
		"kind", t.kind.String(),
		"reason", reason)
}

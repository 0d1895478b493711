package ck2

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/modconv/pdx"
)

// Definition is one row of map/definition.csv: a province id and the color
// that marks the province on provinces.bmp.
type Definition struct {
	ID      int
	R, G, B uint8
	// HasColor is false when the row leaves the color columns empty.
	HasColor bool
	Name     string
	Comment  string
}

// ReadDefinitions reads a definition.csv file.
func (r *Reader) ReadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, pdx.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defs, err := ParseDefinitions(strings.NewReader(pdx.DecodeText(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// ParseDefinitions reads definition rows in the province;red;green;blue;name;x
// layout. The first row is a header. Lines starting with # are skipped, and
// text after # in the last column is kept as the row comment.
func ParseDefinitions(in io.Reader) ([]Definition, error) {
	cr := csv.NewReader(in)
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var defs []Definition
	header := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("definitions: %w", err)
		}
		if header {
			header = false
			continue
		}

		line, _ := cr.FieldPos(0)
		def, ok, err := parseDefinition(rec)
		if err != nil {
			return nil, fmt.Errorf("definitions line %d: %w", line, err)
		}
		if ok {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

func parseDefinition(rec []string) (Definition, bool, error) {
	var def Definition
	if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
		return def, false, nil
	}
	if len(rec) < 4 {
		return def, false, fmt.Errorf("need at least 4 columns, got %d", len(rec))
	}

	id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil {
		return def, false, fmt.Errorf("province id %q: %w", rec[0], err)
	}
	def.ID = id

	var rgb [3]uint8
	colored := true
	for i, col := range rec[1:4] {
		col = strings.TrimSpace(col)
		if col == "" {
			colored = false
			continue
		}
		n, err := strconv.ParseUint(col, 10, 8)
		if err != nil {
			return def, false, fmt.Errorf("province %d color %q: %w", id, col, err)
		}
		rgb[i] = uint8(n)
	}
	if colored {
		def.R, def.G, def.B = rgb[0], rgb[1], rgb[2]
		def.HasColor = true
	}

	switch rest := rec[4:]; {
	case len(rest) == 1:
		def.Name, def.Comment = splitComment(rest[0])
	case len(rest) > 1:
		def.Name = strings.Join(rest[:len(rest)-1], " ")
		_, def.Comment = splitComment(rest[len(rest)-1])
	}
	return def, true, nil
}

func splitComment(col string) (string, string) {
	text, comment, _ := strings.Cut(col, "#")
	return strings.TrimSpace(text), strings.TrimSpace(comment)
}

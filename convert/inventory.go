package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/modconv/pdx"
	"github.com/modconv/pdx/ck2"
)

// Summary counts what Inventory read from a source mod.
type Summary struct {
	Definitions int            `json:"definitions"`
	Histories   int            `json:"histories"`
	Climate     map[string]int `json:"climate"`
	Titles      map[string]int `json:"titles"`
	Modifiers   int            `json:"modifiers"`
	Traits      int            `json:"traits"`
	// Problems lists the files or sections that could not be read.
	Problems []string `json:"problems,omitempty"`
}

// Inventory reads the source mod of cfg: map definitions, province
// histories, climate, landed titles, custom modifiers and traits. A missing
// or broken file is recorded in Summary.Problems and the remaining sections
// are still read; only a canceled ctx or an invalid config fails the call.
func Inventory(ctx context.Context, cfg *Config) (*Summary, error) {
	c := *cfg
	c.defaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	parser := pdx.NewParser().WithMaxDepth(c.MaxDepth).WithLogger(c.Logger)
	r := ck2.NewReader(parser, c.Logger)
	r.Workers = c.Workers
	r.CheckModifiers = c.CheckModifiers

	s := &Summary{Climate: map[string]int{}, Titles: map[string]int{}}
	note := func(section string, err error) {
		if err == nil {
			return
		}
		for _, e := range flatten(err) {
			c.Logger.Warn("convert: read failed", "section", section, "error", e)
			s.Problems = append(s.Problems, fmt.Sprintf("%s: %v", section, e))
		}
	}
	src := c.SourceDir

	defs, err := r.ReadDefinitions(filepath.Join(src, "map", "definition.csv"))
	note("definitions", err)
	s.Definitions = len(defs)

	ids := make([]int, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	histories, err := r.ReadProvinceHistories(ctx, filepath.Join(src, "history", "provinces"), ids)
	note("history", err)
	s.Histories = len(histories)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	climate, err := r.ReadClimate(filepath.Join(src, "map", "climate.txt"))
	note("climate", err)
	for _, severity := range climate {
		s.Climate[severity]++
	}

	titles, err := r.ReadAllTitles(ctx, filepath.Join(src, "common", "landed_titles"))
	note("titles", err)
	for _, roots := range titles {
		for _, t := range roots {
			t.Walk(func(t *ck2.Title) { s.Titles[t.Rank.String()]++ })
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catalog, err := r.ReadAllModifiers(ctx, src)
	note("modifiers", err)
	s.Modifiers = catalog.Len()

	traits, err := r.ReadAllTraits(ctx, src, catalog)
	note("traits", err)
	for _, list := range traits {
		s.Traits += len(list)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Strings(s.Problems)
	return s, nil
}

// flatten splits an error built with errors.Join into its parts.
func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

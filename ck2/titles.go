package ck2

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modconv/pdx"
)

// Rank is the tier of a landed title.
type Rank int

const (
	Empire Rank = iota + 1
	Kingdom
	Duchy
	County
	Barony
)

var rankNames = map[Rank]string{
	Empire:  "empire",
	Kingdom: "kingdom",
	Duchy:   "duchy",
	County:  "county",
	Barony:  "barony",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rank(%d)", int(r))
}

// RankOf returns the rank encoded in a title name prefix (e_, k_, d_, c_, b_).
func RankOf(name string) (Rank, bool) {
	if len(name) < 2 || name[1] != '_' {
		return 0, false
	}
	switch name[0] {
	case 'e':
		return Empire, true
	case 'k':
		return Kingdom, true
	case 'd':
		return Duchy, true
	case 'c':
		return County, true
	case 'b':
		return Barony, true
	}
	return 0, false
}

// Title is a landed title with its de jure children.
type Title struct {
	Name string `pdx:"-"`
	Rank Rank   `pdx:"-"`

	Color             *[3]int `pdx:"color"`
	Color2            *[3]int `pdx:"color2"`
	Capital           int     `pdx:"capital"`
	TitleName         string  `pdx:"title"`
	TitleFemale       string  `pdx:"title_female"`
	ShortName         bool    `pdx:"short_name"`
	Landless          bool    `pdx:"landless"`
	Independent       bool    `pdx:"independent"`
	Primary           bool    `pdx:"primary"`
	DynastyTitleNames bool    `pdx:"dynasty_title_names"`
	CanBeClaimed      bool    `pdx:"can_be_claimed"`
	CanBeUsurped      bool    `pdx:"can_be_usurped"`
	Assimilate        bool    `pdx:"assimilate"`
	ExtraAIEvalTroops int     `pdx:"extra_ai_eval_troops"`

	// CulturalNames maps a culture to the name the title takes under it.
	CulturalNames map[string]string `pdx:"-"`
	Children      []*Title          `pdx:"-"`
}

// Walk calls fn for t and every title below it, parents first.
func (t *Title) Walk(fn func(*Title)) {
	fn(t)
	for _, c := range t.Children {
		c.Walk(fn)
	}
}

var titleFields = map[string]bool{
	"color": true, "color2": true, "capital": true, "title": true,
	"title_female": true, "short_name": true, "landless": true,
	"independent": true, "primary": true, "dynasty_title_names": true,
	"can_be_claimed": true, "can_be_usurped": true, "assimilate": true,
	"extra_ai_eval_troops": true,
}

// String-valued title keys that are not cultural names.
var titleSettings = map[string]bool{
	"culture": true, "religion": true, "controls_religion": true,
	"mercenary_type": true, "graphical_culture": true, "foa": true,
	"title_prefix": true, "name_tier": true, "location_ruler_title": true,
	"holy_site": true, "pentarchy": true, "dignity": true,
}

// ReadLandedTitles reads one common/landed_titles file.
func (r *Reader) ReadLandedTitles(path string) ([]*Title, error) {
	doc, err := r.parser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	titles, err := LandedTitles(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return titles, nil
}

// ReadAllTitles reads every .txt file of dir, keyed by file stem.
func (r *Reader) ReadAllTitles(ctx context.Context, dir string) (map[string][]*Title, error) {
	docs, stems, parseErr := r.parseDir(ctx, dir)
	if docs == nil {
		return nil, parseErr
	}

	all := make(map[string][]*Title, len(docs))
	errs := []error{parseErr}
	for _, stem := range stems {
		titles, err := LandedTitles(docs[stem])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", stem, err))
			continue
		}
		all[stem] = titles
	}
	return all, errors.Join(errs...)
}

// LandedTitles builds the title trees of a parsed landed_titles document.
// Top-level keys that are not blocks with a title prefix are ignored.
func LandedTitles(doc *pdx.Document) ([]*Title, error) {
	var titles []*Title
	for _, n := range doc.Nodes {
		for _, block := range blocks(n.Value) {
			t, ok, err := titleBlock(n.Key, block)
			if err != nil {
				return nil, err
			}
			if ok {
				titles = append(titles, t)
			}
		}
	}
	return titles, nil
}

func titleBlock(name string, block *pdx.Document) (*Title, bool, error) {
	rank, ok := RankOf(name)
	if !ok {
		return nil, false, nil
	}

	t := &Title{Name: name, Rank: rank, CulturalNames: map[string]string{}}
	if err := pdx.Decode(block, t); err != nil {
		return nil, false, fmt.Errorf("title %s: %w", name, err)
	}

	for _, n := range block.Nodes {
		if titleFields[n.Key] {
			continue
		}
		if _, isTitle := RankOf(n.Key); isTitle {
			for _, child := range blocks(n.Value) {
				c, _, err := titleBlock(n.Key, child)
				if err != nil {
					return nil, false, err
				}
				t.Children = append(t.Children, c)
			}
			continue
		}
		if s, ok := n.Value.(pdx.String); ok && !titleSettings[n.Key] && !isSkippedTitleKey(n.Key) {
			t.CulturalNames[n.Key] = string(s)
		}
	}
	return t, true, nil
}

func isSkippedTitleKey(key string) bool {
	for _, prefix := range []string{"allow", "gain_effect", "color", pdx.EnumKey} {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// blocks returns the blocks held by v: v itself, or the blocks of a list
// built from a repeated key.
func blocks(v pdx.Value) []*pdx.Document {
	switch v := v.(type) {
	case *pdx.Document:
		return []*pdx.Document{v}
	case pdx.List:
		var out []*pdx.Document
		for _, item := range v {
			if d, ok := item.(*pdx.Document); ok {
				out = append(out, d)
			}
		}
		return out
	}
	return nil
}

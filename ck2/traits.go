package ck2

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/modconv/pdx"
)

// ErrUnknownModifier is returned for a trait key that is neither a trait
// field nor a known modifier.
var ErrUnknownModifier = errors.New("unknown modifier")

// CustomModifier is a modifier declared by the mod in
// common/modifier_definitions.
type CustomModifier struct {
	Name       string
	Definition *pdx.Document
}

// Catalog holds the custom modifiers of a mod, keyed by file stem then
// modifier name.
type Catalog map[string]map[string]CustomModifier

// Lookup finds a custom modifier in any file, checking files in name order.
func (c Catalog) Lookup(name string) (CustomModifier, bool) {
	files := make([]string, 0, len(c))
	for f := range c {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		if m, ok := c[f][name]; ok {
			return m, true
		}
	}
	return CustomModifier{}, false
}

// Len returns the number of custom modifiers over all files.
func (c Catalog) Len() int {
	n := 0
	for _, mods := range c {
		n += len(mods)
	}
	return n
}

// ReadModifiers reads one modifier definitions file.
func (r *Reader) ReadModifiers(path string) (map[string]CustomModifier, error) {
	doc, err := r.parser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	return modifiers(doc), nil
}

// ReadAllModifiers reads common/modifier_definitions of the mod at modDir.
func (r *Reader) ReadAllModifiers(ctx context.Context, modDir string) (Catalog, error) {
	docs, _, err := r.parseDir(ctx, filepath.Join(modDir, "common", "modifier_definitions"))
	if docs == nil {
		return nil, err
	}
	catalog := make(Catalog, len(docs))
	for stem, doc := range docs {
		catalog[stem] = modifiers(doc)
	}
	return catalog, err
}

func modifiers(doc *pdx.Document) map[string]CustomModifier {
	mods := make(map[string]CustomModifier, doc.Len())
	for _, n := range doc.Nodes {
		def, _ := n.Value.(*pdx.Document)
		if def == nil {
			def = pdx.NewDocument()
		}
		mods[n.Key] = CustomModifier{Name: n.Key, Definition: def}
	}
	return mods
}

// Trait is a character trait. Keys that are not trait fields are collected
// in Modifiers.
type Trait struct {
	Name string `pdx:"-"`

	Opposites       []string      `pdx:"opposites"`
	Potential       pdx.Value     `pdx:"potential"`
	CommandModifier *pdx.Document `pdx:"command_modifier"`

	Agnatic          bool `pdx:"agnatic"`
	Birth            int  `pdx:"birth"`
	Cached           bool `pdx:"cached"`
	Congenital       bool `pdx:"congenital"`
	Customizer       bool `pdx:"customizer"`
	Education        bool `pdx:"education"`
	Hidden           bool `pdx:"hidden"`
	Immortal         bool `pdx:"immortal"`
	Inbred           bool `pdx:"inbred"`
	Incapacitating   bool `pdx:"incapacitating"`
	IsEpidemic       bool `pdx:"is_epidemic"`
	IsHealth         bool `pdx:"is_health"`
	IsIllness        bool `pdx:"is_illness"`
	Leader           bool `pdx:"leader"`
	LeadershipTraits bool `pdx:"leadership_traits"`
	Lifestyle        bool `pdx:"lifestyle"`
	Personality      bool `pdx:"personality"`
	PreventDecadence bool `pdx:"prevent_decadence"`
	Priest           bool `pdx:"priest"`
	Random           bool `pdx:"random"`
	Religious        bool `pdx:"religious"`
	Vice             bool `pdx:"vice"`
	Virtue           bool `pdx:"virtue"`

	MaleInsult          string `pdx:"male_insult"`
	FemaleInsult        string `pdx:"female_insult"`
	MaleInsultAdj       string `pdx:"male_insult_adj"`
	FemaleInsultAdj     string `pdx:"female_insult_adj"`
	MaleCompliment      string `pdx:"male_compliment"`
	FemaleCompliment    string `pdx:"female_compliment"`
	MaleComplimentAdj   string `pdx:"male_compliment_adj"`
	FemaleComplimentAdj string `pdx:"female_compliment_adj"`
	ChildInsult         string `pdx:"child_insult"`
	ChildInsultAdj      string `pdx:"child_insult_adj"`
	ChildCompliment     string `pdx:"child_compliment"`
	ChildComplimentAdj  string `pdx:"child_compliment_adj"`

	Modifiers *pdx.Document `pdx:"-"`
}

// traitFields lists the keys decoded into Trait fields.
var traitFields = func() map[string]bool {
	keys := []string{
		"opposites", "potential", "command_modifier",
		"agnatic", "birth", "cached", "congenital", "customizer", "education",
		"hidden", "immortal", "inbred", "incapacitating", "is_epidemic",
		"is_health", "is_illness", "leader", "leadership_traits", "lifestyle",
		"personality", "prevent_decadence", "priest", "random", "religious",
		"vice", "virtue",
		"male_insult", "female_insult", "male_insult_adj", "female_insult_adj",
		"male_compliment", "female_compliment", "male_compliment_adj",
		"female_compliment_adj", "child_insult", "child_insult_adj",
		"child_compliment", "child_compliment_adj",
	}
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}()

// ReadTraits reads one common/traits file. With CheckModifiers set, every
// key that is not a trait field must be a built-in modifier or a custom
// modifier of catalog.
func (r *Reader) ReadTraits(path string, catalog Catalog) ([]*Trait, error) {
	doc, err := r.parser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	traits, err := Traits(doc, catalog, r.CheckModifiers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return traits, nil
}

// ReadAllTraits reads common/traits of the mod at modDir, keyed by file stem.
func (r *Reader) ReadAllTraits(ctx context.Context, modDir string, catalog Catalog) (map[string][]*Trait, error) {
	docs, stems, parseErr := r.parseDir(ctx, filepath.Join(modDir, "common", "traits"))
	if docs == nil {
		return nil, parseErr
	}

	all := make(map[string][]*Trait, len(docs))
	errs := []error{parseErr}
	for _, stem := range stems {
		traits, err := Traits(docs[stem], catalog, r.CheckModifiers)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", stem, err))
			continue
		}
		all[stem] = traits
	}
	return all, errors.Join(errs...)
}

// Traits builds the traits of a parsed traits document.
func Traits(doc *pdx.Document, catalog Catalog, check bool) ([]*Trait, error) {
	var traits []*Trait
	for _, n := range doc.Nodes {
		for _, block := range blocks(n.Value) {
			t, err := trait(n.Key, block, catalog, check)
			if err != nil {
				return nil, err
			}
			traits = append(traits, t)
		}
	}
	return traits, nil
}

func trait(name string, block *pdx.Document, catalog Catalog, check bool) (*Trait, error) {
	t := &Trait{Name: name}
	if err := pdx.Decode(block, t); err != nil {
		return nil, fmt.Errorf("trait %s: %w", name, err)
	}

	var mods []pdx.Node
	for _, n := range block.Nodes {
		if traitFields[n.Key] {
			continue
		}
		if check && !builtinModifiers[n.Key] {
			if _, ok := catalog.Lookup(n.Key); !ok {
				return nil, fmt.Errorf("trait %s: %s: %w", name, n.Key, ErrUnknownModifier)
			}
		}
		mods = append(mods, n)
	}
	t.Modifiers = pdx.NewDocument(mods...)
	return t, nil
}

// builtinModifiers are the character modifiers the base game defines.
var builtinModifiers = func() map[string]bool {
	keys := []string{
		"diplomacy", "stewardship", "martial", "intrigue", "learning",
		"diplomacy_penalty", "stewardship_penalty", "martial_penalty",
		"intrigue_penalty", "learning_penalty",
		"health", "health_penalty", "fertility", "fertility_penalty",
		"combat_rating", "sex_appeal_opinion", "same_opinion",
		"same_opinion_if_same_religion", "opposite_opinion", "general_opinion",
		"vassal_opinion", "liege_opinion", "church_opinion", "temple_opinion",
		"town_opinion", "castle_opinion", "tribal_opinion", "spouse_opinion",
		"dynasty_opinion", "twin_opinion", "ambition_opinion",
		"rel_head_opinion", "user_opinion", "infidel_opinion",
		"same_religion_opinion", "christian_opinion", "muslim_opinion",
		"pagan_group_opinion", "zoroastrian_group_opinion", "jewish_group_opinion",
		"indian_group_opinion", "unreformed_pagan_opinion",
		"monthly_character_prestige", "monthly_character_piety",
		"monthly_character_wealth", "global_tax_modifier", "global_levy_size",
		"levy_size", "levy_reinforce_rate", "global_revolt_risk",
		"plot_power_modifier", "murder_plot_power_modifier",
		"defensive_plot_power_modifier", "plot_discovery_chance",
		"threat_decay_speed", "assassinate_chance_modifier",
		"arrest_chance_modifier", "ai_rationality", "ai_zeal", "ai_greed",
		"ai_honor", "ai_ambition", "ai_sociability",
		"religion_flex_head_opinion", "tech_growth_modifier",
		"max_manpower_mult", "retinuesize_perc", "demesne_size",
	}
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}()

package pdx

import (
	"fmt"
)

// MergeStrategy decides how a later document combines with an earlier one.
type MergeStrategy string

const (
	// MergeDeep merges blocks key by key, recursively.
	MergeDeep MergeStrategy = "deep"
	// MergeShallow replaces whole top-level values.
	MergeShallow MergeStrategy = "shallow"
	// MergeReplace keeps only the last document.
	MergeReplace MergeStrategy = "replace"
)

// ListStrategy decides how two lists under the same key combine in a deep merge.
type ListStrategy string

const (
	ListAppend  ListStrategy = "append"
	ListReplace ListStrategy = "replace"
	ListUnique  ListStrategy = "unique"
)

// MergeOptions configures a Merger.
type MergeOptions struct {
	Strategy     MergeStrategy
	ListStrategy ListStrategy
}

// Merger combines documents in load order, the way the game applies several
// files of one folder: later definitions win.
type Merger struct {
	options MergeOptions
	parser  *Parser
}

// NewMerger creates a deep, list-appending Merger.
func NewMerger() *Merger {
	return &Merger{
		options: MergeOptions{
			Strategy:     MergeDeep,
			ListStrategy: ListAppend,
		},
		parser: defaultParser,
	}
}

// WithOptions sets merge options. Empty fields keep their current value.
func (m *Merger) WithOptions(opts MergeOptions) *Merger {
	if opts.Strategy != "" {
		m.options.Strategy = opts.Strategy
	}
	if opts.ListStrategy != "" {
		m.options.ListStrategy = opts.ListStrategy
	}
	return m
}

// WithParser sets the parser used by MergeFiles.
func (m *Merger) WithParser(p *Parser) *Merger {
	if p != nil {
		m.parser = p
	}
	return m
}

// Merge combines docs in order into a new document. Inputs are not modified.
func (m *Merger) Merge(docs ...*Document) *Document {
	result := NewDocument()
	for _, d := range docs {
		if d == nil {
			continue
		}
		if m.options.Strategy == MergeReplace {
			result = d
			continue
		}
		result = m.mergeDocuments(result, d)
	}
	return result
}

// MergeFiles parses paths in order and merges them.
func (m *Merger) MergeFiles(paths ...string) (*Document, error) {
	docs := make([]*Document, 0, len(paths))
	for _, p := range paths {
		doc, err := m.parser.ParseFile(p)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		docs = append(docs, doc)
	}
	return m.Merge(docs...), nil
}

// mergeDocuments keeps base key order, replaces or merges existing keys in
// place and appends new keys.
func (m *Merger) mergeDocuments(base, overlay *Document) *Document {
	nodes := make([]Node, len(base.Nodes), len(base.Nodes)+len(overlay.Nodes))
	copy(nodes, base.Nodes)
	result := NewDocument(nodes...)

	for _, n := range overlay.Nodes {
		i, exists := result.index[n.Key]
		if !exists {
			result.index[n.Key] = len(result.Nodes)
			result.Nodes = append(result.Nodes, n)
			continue
		}
		if m.options.Strategy == MergeShallow {
			result.Nodes[i].Value = n.Value
			continue
		}
		result.Nodes[i].Value = m.mergeValues(result.Nodes[i].Value, n.Value)
	}
	return result
}

func (m *Merger) mergeValues(base, overlay Value) Value {
	if overlay == nil {
		return base
	}

	baseDoc, baseIsDoc := base.(*Document)
	overlayDoc, overlayIsDoc := overlay.(*Document)
	if baseIsDoc && overlayIsDoc {
		return m.mergeDocuments(baseDoc, overlayDoc)
	}

	baseList, baseIsList := base.(List)
	overlayList, overlayIsList := overlay.(List)
	if baseIsList && overlayIsList {
		switch m.options.ListStrategy {
		case ListAppend:
			return concat(baseList, overlayList)
		case ListUnique:
			return uniqueList(concat(baseList, overlayList))
		default:
			return overlayList
		}
	}

	return overlay
}

func concat(a, b List) List {
	out := make(List, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// uniqueList drops values equal to an earlier one.
func uniqueList(list List) List {
	result := List{}
	for _, item := range list {
		dup := false
		for _, kept := range result {
			if Equal(item, kept) {
				dup = true
				break
			}
		}
		if !dup {
			result = append(result, item)
		}
	}
	return result
}

package pdx

// rawBlock collects the entries of one block while it is parsed. Keys may
// repeat and bare tokens sit apart from the pairs until the block closes.
type rawBlock struct {
	nodes []Node
	enum  List
	// enumAt is the number of pairs seen before the first bare token.
	enumAt int
}

func (b *rawBlock) add(key string, v Value) {
	b.nodes = append(b.nodes, Node{Key: key, Value: v})
}

func (b *rawBlock) addEnum(v Value) {
	if b.enum == nil {
		b.enumAt = len(b.nodes)
	}
	b.enum = append(b.enum, v)
}

// blockValue normalizes a nested block: bare tokens alone become a List,
// everything else a *Document.
func (b *rawBlock) blockValue() Value {
	if len(b.nodes) == 0 && len(b.enum) > 0 {
		return b.enum
	}
	return b.document()
}

// document merges repeated keys into ordered lists, keeping first-seen key
// order. A key seen once stays a scalar. Bare tokens of a mixed block are
// stored under EnumKey at the position of the first one.
func (b *rawBlock) document() *Document {
	nodes := b.nodes
	if b.enum != nil {
		nodes = make([]Node, 0, len(b.nodes)+1)
		nodes = append(nodes, b.nodes[:b.enumAt]...)
		nodes = append(nodes, Node{Key: EnumKey, Value: b.enum})
		nodes = append(nodes, b.nodes[b.enumAt:]...)
	}

	doc := &Document{
		Nodes: make([]Node, 0, len(nodes)),
		index: make(map[string]int, len(nodes)),
	}
	// merged tracks keys already turned into a List by this pass, so a value
	// that is itself a List is not mistaken for an accumulator.
	merged := make(map[string]bool)
	for _, n := range nodes {
		i, seen := doc.index[n.Key]
		if !seen {
			doc.index[n.Key] = len(doc.Nodes)
			doc.Nodes = append(doc.Nodes, n)
			continue
		}
		if merged[n.Key] {
			doc.Nodes[i].Value = append(doc.Nodes[i].Value.(List), n.Value)
			continue
		}
		doc.Nodes[i].Value = List{doc.Nodes[i].Value, n.Value}
		merged[n.Key] = true
	}
	return doc
}

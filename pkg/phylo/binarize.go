package phylo

// Binarize resolves multifurcating nodes into a strictly bifurcating tree and
// returns it along with the number of synthetic nodes inserted. Trees that
// are already bifurcating are returned unchanged (same pointer, zero count).
//
// The resolution policy is a left fold over each polytomy's children in
// attachment order: children c0..ck become a ladder
//
//	((...((c0,c1),c2)...),ck)
//
// where every synthetic ladder node is joined to its parent by a zero-length
// edge, so the resolution adds no variance of its own. The policy is fixed
// and documented here because the classic contrasts algorithm does not define
// a resolution order; callers comparing results across tools must account for
// the arbitrary choice.
//
// Zero-length synthetic edges can still surface as a degenerate-branch error
// during computation when both sides of a synthetic node have zero adjusted
// length; that is the correct signal, not something Binarize papers over.
//
// Node IDs are reassigned in the new tree (tips keep their labels, so the
// label-to-ID mapping remains the stable way to address tips). Synthetic
// nodes carry [KindSynthetic].
func Binarize(t *Tree) (*Tree, int) {
	if t.Bifurcating() {
		return t, 0
	}

	b := NewBuilder()
	added := 0
	ids := make(map[NodeID]NodeID, t.NodeCount())

	// Creation-order walk keeps the rebuilt IDs deterministic.
	for id := range t.nodes {
		switch t.nodes[id].kind {
		case KindTip:
			nid, _ := b.AddTip(t.nodes[id].label)
			ids[NodeID(id)] = nid
		default:
			ids[NodeID(id)] = b.AddInternal()
		}
	}

	var attach func(id NodeID)
	attach = func(id NodeID) {
		children := t.nodes[id].children
		if len(children) <= 2 {
			for _, c := range children {
				b.Connect(ids[id], ids[c], t.nodes[c].length)
				attach(c)
			}
			return
		}

		// Fold the first k-1 children into a ladder of synthetic nodes; the
		// last child attaches directly under the original node.
		prev := ids[children[0]]
		prevLen := t.nodes[children[0]].length
		for _, c := range children[1 : len(children)-1] {
			ladder := b.AddInternal()
			b.nodes[ladder].kind = KindSynthetic
			added++
			b.Connect(ladder, prev, prevLen)
			b.Connect(ladder, ids[c], t.nodes[c].length)
			prev = ladder
			prevLen = 0
		}
		last := children[len(children)-1]
		b.Connect(ids[id], prev, prevLen)
		b.Connect(ids[id], ids[last], t.nodes[last].length)
		for _, c := range children {
			attach(c)
		}
	}
	attach(t.root)

	// The fold preserves every validated invariant, so Build cannot fail.
	out, err := b.Build()
	if err != nil {
		panic("phylo: binarize produced invalid tree: " + err.Error())
	}
	return out, added
}

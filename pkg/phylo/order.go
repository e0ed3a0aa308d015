package phylo

import "fmt"

// PostOrder returns the internal nodes of t in post-order: for every internal
// node, both children (tips or internal nodes) appear strictly before it.
//
// The order is deterministic given the tree: an iterative depth-first walk
// from the root that descends into the left subtree (first-attached child)
// before the right, so sibling subtrees are emitted left to right. Unit tests
// can assert the exact visitation sequence.
//
// PostOrder independently re-checks the safety property the traversal relies
// on and returns ErrCycleDetected if any node would be visited twice. Build
// already guarantees this cannot happen for a validated Tree.
func PostOrder(t *Tree) ([]NodeID, error) {
	order := make([]NodeID, 0, t.InternalCount())
	seen := make([]bool, t.NodeCount())

	// Two-stack post-order: pop from the walk stack into the emit stack, then
	// reverse. Children are pushed in attachment order so that, after the
	// final reversal, the left subtree precedes the right.
	walk := []NodeID{t.root}
	emit := make([]NodeID, 0, t.NodeCount())
	for len(walk) > 0 {
		id := walk[len(walk)-1]
		walk = walk[:len(walk)-1]
		if seen[id] {
			return nil, fmt.Errorf("%w: node %d visited twice", ErrCycleDetected, id)
		}
		seen[id] = true
		emit = append(emit, id)
		walk = append(walk, t.nodes[id].children...)
	}

	for i := len(emit) - 1; i >= 0; i-- {
		if id := emit[i]; !t.IsTip(id) {
			order = append(order, id)
		}
	}
	return order, nil
}

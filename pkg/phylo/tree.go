package phylo

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrMalformedTree is the umbrella error for structural invariant
	// violations detected by [Builder.Build]: cycles, disconnection, multiple
	// roots, non-bifurcating internal nodes, duplicate tip labels, and
	// negative or non-finite branch lengths. Specific violations wrap this
	// error, so errors.Is(err, ErrMalformedTree) matches all of them.
	ErrMalformedTree = errors.New("malformed tree")

	// ErrInvalidTipLabel is returned by [Builder.AddTip] when the label is
	// empty. All tips must have non-empty labels.
	ErrInvalidTipLabel = errors.New("tip label must not be empty")

	// ErrDuplicateTipLabel is returned by [Builder.AddTip] when a tip with
	// the same label already exists. Tip labels must be unique.
	ErrDuplicateTipLabel = errors.New("duplicate tip label")

	// ErrUnknownNode is returned by [Builder.Connect] when either endpoint
	// does not exist in the builder.
	ErrUnknownNode = errors.New("unknown node")

	// ErrReparentedNode is returned by [Builder.Connect] when the child
	// already has a parent edge. Every non-root node has exactly one parent.
	ErrReparentedNode = errors.New("node already has a parent")

	// ErrCycleDetected is returned by [PostOrder] when no tips-before-parents
	// order exists. This is defensive: Build rejects cyclic structures, so a
	// tree that fails here indicates corruption after construction.
	ErrCycleDetected = errors.New("cycle detected")
)

// NodeID identifies a node within one Tree. IDs are small dense integers
// assigned by the Builder in creation order and are stable for the life of
// the tree, so results keyed by NodeID are traceable back to the input.
type NodeID int

// NoNode is the NodeID returned when no node applies (e.g. the root's parent).
const NoNode NodeID = -1

// NodeKind distinguishes observed tips from ancestral nodes.
type NodeKind int

const (
	// KindTip is a leaf carrying an observed trait value for a named taxon.
	KindTip NodeKind = iota
	// KindInternal is a hypothetical ancestor with exactly two children in a
	// valid bifurcating tree.
	KindInternal
	// KindSynthetic marks internal nodes inserted by [Binarize] to resolve
	// polytomies. Synthetic nodes behave like regular internal nodes during
	// computation; the kind is kept so callers can trace them back.
	KindSynthetic
)

// node is the internal node record. Tips carry a label; the branch length is
// the length of the edge above the node (unused for the root, which has no
// parent edge).
type node struct {
	kind     NodeKind
	label    string
	parent   NodeID
	children []NodeID
	length   float64
}

// Tree is an immutable, validated rooted phylogenetic tree with branch
// lengths. The zero value is not usable - build one with [Builder].
//
// Tree carries no per-computation state: derived quantities (adjusted branch
// lengths, ancestral values) live in caller-owned scratch space, so a single
// Tree can back any number of concurrent trait computations.
type Tree struct {
	nodes     []node
	root      NodeID
	tips      map[string]NodeID
	tipIDs    []NodeID
	internals []NodeID
}

// Builder accumulates nodes and edges for a Tree. The zero value is not
// usable - use [NewBuilder]. Builder is not safe for concurrent use.
type Builder struct {
	nodes           []node
	tips            map[string]NodeID
	allowPolytomies bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// AllowPolytomies permits internal nodes with more than two children.
// The resulting tree must be passed through [Binarize] before it can be used
// for contrast computation.
func AllowPolytomies() BuilderOption {
	return func(b *Builder) { b.allowPolytomies = true }
}

// NewBuilder creates an empty tree builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{tips: make(map[string]NodeID)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddTip adds a leaf with the given label and returns its ID.
// Returns ErrInvalidTipLabel for an empty label or ErrDuplicateTipLabel if
// the label is already in use.
func (b *Builder) AddTip(label string) (NodeID, error) {
	if label == "" {
		return NoNode, ErrInvalidTipLabel
	}
	if _, exists := b.tips[label]; exists {
		return NoNode, fmt.Errorf("%w: %q", ErrDuplicateTipLabel, label)
	}
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, node{kind: KindTip, label: label, parent: NoNode})
	b.tips[label] = id
	return id, nil
}

// AddInternal adds an internal node and returns its ID.
func (b *Builder) AddInternal() NodeID {
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, node{kind: KindInternal, parent: NoNode})
	return id
}

// Connect attaches child under parent with the given branch length for the
// edge above child. Child order is significant: the first child connected to
// a parent is that parent's left child, which fixes the traversal order and
// the contrast sign convention downstream.
//
// Returns ErrUnknownNode if either endpoint doesn't exist or
// ErrReparentedNode if the child already has a parent. Branch length values
// are validated later by Build so all violations are reported consistently.
func (b *Builder) Connect(parent, child NodeID, length float64) error {
	if !b.valid(parent) {
		return fmt.Errorf("%w: parent %d", ErrUnknownNode, parent)
	}
	if !b.valid(child) {
		return fmt.Errorf("%w: child %d", ErrUnknownNode, child)
	}
	if b.nodes[child].parent != NoNode {
		return fmt.Errorf("%w: node %d", ErrReparentedNode, child)
	}
	if parent == child {
		return fmt.Errorf("%w: self edge at node %d", ErrMalformedTree, child)
	}
	b.nodes[child].parent = parent
	b.nodes[child].length = length
	b.nodes[parent].children = append(b.nodes[parent].children, child)
	return nil
}

func (b *Builder) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(b.nodes)
}

// Build validates the accumulated structure and returns an immutable Tree.
//
// Validation checks, in order:
//
//  1. At least one tip exists
//  2. Exactly one node has no parent (single root)
//  3. Every node is reachable from the root (connected, acyclic)
//  4. Tips have no children; internal nodes have exactly two children
//     (at least two when polytomies are allowed)
//  5. Every non-root branch length is finite and >= 0
//  6. Internal count equals tip count - 1 (strict bifurcation only)
//
// All failures wrap ErrMalformedTree and cite the specific violation.
// After Build the builder must not be reused.
func (b *Builder) Build() (*Tree, error) {
	if len(b.tips) == 0 {
		return nil, fmt.Errorf("%w: tree has no tips", ErrMalformedTree)
	}

	root := NoNode
	for id := range b.nodes {
		if b.nodes[id].parent != NoNode {
			continue
		}
		if root != NoNode {
			return nil, fmt.Errorf("%w: multiple roots (nodes %d and %d)", ErrMalformedTree, root, id)
		}
		root = NodeID(id)
	}
	if root == NoNode {
		// Every node has a parent, which is only possible with a cycle.
		return nil, fmt.Errorf("%w: no root (parent cycle)", ErrMalformedTree)
	}

	seen := make([]bool, len(b.nodes))
	reached := 0
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return nil, fmt.Errorf("%w: cycle through node %d", ErrMalformedTree, id)
		}
		seen[id] = true
		reached++
		stack = append(stack, b.nodes[id].children...)
	}
	if reached != len(b.nodes) {
		return nil, fmt.Errorf("%w: %d of %d nodes unreachable from root %d",
			ErrMalformedTree, len(b.nodes)-reached, len(b.nodes), root)
	}

	var tipIDs, internals []NodeID
	for id := range b.nodes {
		n := &b.nodes[id]
		switch n.kind {
		case KindTip:
			if len(n.children) > 0 {
				return nil, fmt.Errorf("%w: tip %q has children", ErrMalformedTree, n.label)
			}
			tipIDs = append(tipIDs, NodeID(id))
		default:
			if c := len(n.children); c < 2 || (c > 2 && !b.allowPolytomies) {
				return nil, fmt.Errorf("%w: internal node %d has %d children, want 2",
					ErrMalformedTree, id, c)
			}
			internals = append(internals, NodeID(id))
		}
		if NodeID(id) != root {
			if l := n.length; math.IsNaN(l) || math.IsInf(l, 0) || l < 0 {
				return nil, fmt.Errorf("%w: branch length %v above node %d", ErrMalformedTree, l, id)
			}
		}
	}

	if !b.allowPolytomies && len(internals) != len(tipIDs)-1 {
		return nil, fmt.Errorf("%w: %d internal nodes for %d tips, want %d",
			ErrMalformedTree, len(internals), len(tipIDs), len(tipIDs)-1)
	}

	t := &Tree{
		nodes:     b.nodes,
		root:      root,
		tips:      b.tips,
		tipIDs:    tipIDs,
		internals: internals,
	}
	b.nodes = nil
	b.tips = nil
	return t, nil
}

// Root returns the ID of the unique parentless node.
func (t *Tree) Root() NodeID { return t.root }

// IsTip reports whether id is a leaf.
func (t *Tree) IsTip(id NodeID) bool { return t.nodes[id].kind == KindTip }

// Kind returns the node's kind.
func (t *Tree) Kind(id NodeID) NodeKind { return t.nodes[id].kind }

// Label returns the tip label, or "" for internal nodes.
func (t *Tree) Label(id NodeID) string { return t.nodes[id].label }

// TipID returns the node ID for a tip label.
func (t *Tree) TipID(label string) (NodeID, bool) {
	id, ok := t.tips[label]
	return id, ok
}

// Parent returns the parent of id, or NoNode and false for the root.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	p := t.nodes[id].parent
	return p, p != NoNode
}

// BranchLength returns the raw length of the edge above id.
// The root has no parent edge; its length is reported as 0.
func (t *Tree) BranchLength(id NodeID) float64 { return t.nodes[id].length }

// Children returns the left and right child of a bifurcating internal node.
// Left is the child that was connected first. ok is false for tips and for
// multifurcating nodes - use ChildIDs for those.
func (t *Tree) Children(id NodeID) (left, right NodeID, ok bool) {
	c := t.nodes[id].children
	if len(c) != 2 {
		return NoNode, NoNode, false
	}
	return c[0], c[1], true
}

// ChildIDs returns all children of id in attachment order.
// The returned slice is a copy and can be modified freely.
func (t *Tree) ChildIDs(id NodeID) []NodeID { return slices.Clone(t.nodes[id].children) }

// Degree returns the number of children of id.
func (t *Tree) Degree(id NodeID) int { return len(t.nodes[id].children) }

// Tips returns the IDs of all leaves in creation order.
func (t *Tree) Tips() []NodeID { return slices.Clone(t.tipIDs) }

// TipLabels returns all tip labels in creation order.
func (t *Tree) TipLabels() []string {
	labels := make([]string, len(t.tipIDs))
	for i, id := range t.tipIDs {
		labels[i] = t.nodes[id].label
	}
	return labels
}

// Internals returns the IDs of all internal nodes in creation order.
func (t *Tree) Internals() []NodeID { return slices.Clone(t.internals) }

// TipCount returns the number of leaves.
func (t *Tree) TipCount() int { return len(t.tipIDs) }

// InternalCount returns the number of internal nodes.
func (t *Tree) InternalCount() int { return len(t.internals) }

// NodeCount returns the total number of nodes.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Bifurcating reports whether every internal node has exactly two children.
// Trees built with [AllowPolytomies] may return false; resolve them with
// [Binarize] before computing contrasts.
func (t *Tree) Bifurcating() bool {
	for _, id := range t.internals {
		if len(t.nodes[id].children) != 2 {
			return false
		}
	}
	return true
}

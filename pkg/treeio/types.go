package treeio

import (
	"fmt"

	"github.com/matzehuels/treecontrast/pkg/phylo"
)

// Node kinds as serialized.
const (
	KindTip       = "tip"
	KindInternal  = "internal"
	KindSynthetic = "synthetic"
)

// Document is the canonical serialization format for phylogenetic trees.
// Used for API requests/responses, storage, caching, and cross-tool
// compatibility. It is the module's own structure format, deliberately not a
// phylogenetic interchange format: converting newick or nexus files into
// Documents is a collaborator's job.
//
// The format is human-readable and designed for round-trip fidelity:
// import → export → re-import produces an identical tree, including node
// IDs and child attachment order (which fixes the contrast sign convention).
type Document struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is one tree node as serialized. Tips carry a label; internal nodes
// don't. IDs are document-scoped strings ("n0", "n1", ...) derived from the
// tree's dense integer IDs.
type Node struct {
	ID    string `json:"id" bson:"id"`
	Kind  string `json:"kind" bson:"kind"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`
}

// Edge connects a child to its parent with the raw branch length of the edge
// above the child. Edge order within the document is significant: the order
// of a parent's edges defines its child order.
type Edge struct {
	Parent string  `json:"parent" bson:"parent"`
	Child  string  `json:"child" bson:"child"`
	Length float64 `json:"length" bson:"length"`
}

// TraitDocument is the serialized trait vector: tip label to observed value.
// Name is optional and only used for display and run records.
type TraitDocument struct {
	Name   string             `json:"name,omitempty" bson:"name,omitempty"`
	Values map[string]float64 `json:"values" bson:"values"`
}

// Vector returns the document's values as a TraitVector.
func (d TraitDocument) Vector() phylo.TraitVector {
	return phylo.TraitVector(d.Values).Clone()
}

// nodeID formats a tree node ID for the document.
func nodeID(id phylo.NodeID) string { return fmt.Sprintf("n%d", id) }

var kindToString = map[phylo.NodeKind]string{
	phylo.KindTip:       KindTip,
	phylo.KindInternal:  KindInternal,
	phylo.KindSynthetic: KindSynthetic,
}

// FromTree converts a tree to its serialization format.
// Nodes are emitted in ID order and edges grouped by parent in attachment
// order, so output is deterministic and byte-stable for cache hashing.
func FromTree(t *phylo.Tree) Document {
	doc := Document{
		Nodes: make([]Node, 0, t.NodeCount()),
		Edges: make([]Edge, 0, t.NodeCount()-1),
	}
	for id := phylo.NodeID(0); int(id) < t.NodeCount(); id++ {
		doc.Nodes = append(doc.Nodes, Node{
			ID:    nodeID(id),
			Kind:  kindToString[t.Kind(id)],
			Label: t.Label(id),
		})
	}
	for id := phylo.NodeID(0); int(id) < t.NodeCount(); id++ {
		for _, c := range t.ChildIDs(id) {
			doc.Edges = append(doc.Edges, Edge{
				Parent: nodeID(id),
				Child:  nodeID(c),
				Length: t.BranchLength(c),
			})
		}
	}
	return doc
}

// ToTree converts a Document to a validated tree.
// Builder options (e.g. phylo.AllowPolytomies) are passed through; without
// them the document must describe a strictly bifurcating tree. Returns the
// builder's or Build's error for malformed documents.
func ToTree(doc Document, opts ...phylo.BuilderOption) (*phylo.Tree, error) {
	b := phylo.NewBuilder(opts...)
	ids := make(map[string]phylo.NodeID, len(doc.Nodes))

	for _, n := range doc.Nodes {
		if _, dup := ids[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node ID %q", phylo.ErrMalformedTree, n.ID)
		}
		switch n.Kind {
		case KindTip:
			id, err := b.AddTip(n.Label)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", n.ID, err)
			}
			ids[n.ID] = id
		case KindInternal, KindSynthetic:
			ids[n.ID] = b.AddInternal()
		default:
			return nil, fmt.Errorf("%w: node %s has unknown kind %q", phylo.ErrMalformedTree, n.ID, n.Kind)
		}
	}

	for _, e := range doc.Edges {
		parent, ok := ids[e.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: edge parent %q", phylo.ErrUnknownNode, e.Parent)
		}
		child, ok := ids[e.Child]
		if !ok {
			return nil, fmt.Errorf("%w: edge child %q", phylo.ErrUnknownNode, e.Child)
		}
		if err := b.Connect(parent, child, e.Length); err != nil {
			return nil, fmt.Errorf("edge %s→%s: %w", e.Parent, e.Child, err)
		}
	}

	return b.Build()
}

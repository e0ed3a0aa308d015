package pic

import (
	"slices"

	"github.com/matzehuels/treecontrast/pkg/phylo"
)

// Contrast is the output for one internal node. Value is the raw difference
// between the node's two children (left minus right, left = first-attached).
// Variance is the sum of the children's adjusted branch lengths and is always
// reported, so callers can standardize later. Standardized is populated only
// when Options.Standardize was set.
//
// Contrasts are immutable once emitted and keyed by the internal node's ID,
// not by row position, so results stay traceable to the input tree.
type Contrast struct {
	Node         phylo.NodeID `json:"node" bson:"node"`
	Value        float64      `json:"value" bson:"value"`
	Variance     float64      `json:"variance" bson:"variance"`
	Standardized *float64     `json:"standardized,omitempty" bson:"standardized,omitempty"`
}

// ContrastSet is the complete result of one computation: exactly one contrast
// per internal node (N-1 for N tips) plus the estimated ancestral values,
// both keyed by internal node ID. Node IDs are never reordered or renumbered,
// so two trait vectors computed over the same tree produce comparably indexed
// outputs.
type ContrastSet struct {
	Contrasts map[phylo.NodeID]Contrast `json:"contrasts" bson:"contrasts"`
	Ancestral map[phylo.NodeID]float64  `json:"ancestral" bson:"ancestral"`

	// Standardized records whether the contrasts carry standardized values.
	Standardized bool `json:"standardized" bson:"standardized"`
}

func newContrastSet(internals int, standardized bool) *ContrastSet {
	return &ContrastSet{
		Contrasts:    make(map[phylo.NodeID]Contrast, internals),
		Ancestral:    make(map[phylo.NodeID]float64, internals),
		Standardized: standardized,
	}
}

func (cs *ContrastSet) add(c Contrast, ancestral float64) {
	cs.Contrasts[c.Node] = c
	cs.Ancestral[c.Node] = ancestral
}

// Len returns the number of contrasts.
func (cs *ContrastSet) Len() int { return len(cs.Contrasts) }

// Nodes returns the internal node IDs in ascending order.
func (cs *ContrastSet) Nodes() []phylo.NodeID {
	ids := make([]phylo.NodeID, 0, len(cs.Contrasts))
	for id := range cs.Contrasts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Sorted returns the contrasts ordered by ascending node ID.
// This is the stable presentation order for tables and serialized output.
func (cs *ContrastSet) Sorted() []Contrast {
	out := make([]Contrast, 0, len(cs.Contrasts))
	for _, id := range cs.Nodes() {
		out = append(out, cs.Contrasts[id])
	}
	return out
}

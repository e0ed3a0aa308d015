package treeio

import (
	"slices"

	"github.com/matzehuels/treecontrast/pkg/errors"
	"github.com/matzehuels/treecontrast/pkg/phylo"
)

// Report lists what Reconcile dropped on each side. Loaders must surface
// this to the user; silent pruning hides data problems.
type Report struct {
	// DroppedTips are tree tips with no trait observation, pruned from the
	// returned tree.
	DroppedTips []string `json:"dropped_tips,omitempty" bson:"dropped_tips,omitempty"`
	// DroppedTraits are trait labels with no matching tip, removed from the
	// returned vector.
	DroppedTraits []string `json:"dropped_traits,omitempty" bson:"dropped_traits,omitempty"`
}

// Empty reports whether nothing was dropped.
func (r Report) Empty() bool {
	return len(r.DroppedTips) == 0 && len(r.DroppedTraits) == 0
}

// Reconcile prunes the tree and trait vector down to their common tip-label
// set, so the pair satisfies the core's exact-match contract. This is the
// collaborator obligation the computation itself refuses to take on: pic
// fails on any mismatch rather than guessing.
//
// Pruning a tip collapses its parent: the sibling is spliced onto the
// grandparent with the two branch lengths summed, preserving total
// root-to-tip path lengths for the surviving taxa. If the root itself
// collapses, the surviving child becomes the new root and its pendant edge
// length is discarded (a root has no parent edge).
//
// Returns INVALID_INPUT if fewer than two tips survive. The inputs are never
// modified; a tree needing no pruning is returned as-is.
func Reconcile(t *phylo.Tree, traits phylo.TraitVector) (*phylo.Tree, phylo.TraitVector, Report, error) {
	var report Report
	for label := range traits {
		if _, ok := t.TipID(label); !ok {
			report.DroppedTraits = append(report.DroppedTraits, label)
		}
	}
	slices.Sort(report.DroppedTraits)

	kept := 0
	for _, label := range t.TipLabels() {
		if _, ok := traits[label]; ok {
			kept++
		} else {
			report.DroppedTips = append(report.DroppedTips, label)
		}
	}
	slices.Sort(report.DroppedTips)

	if kept < 2 {
		return nil, nil, report, errors.New(errors.ErrCodeInvalidInput,
			"only %d tips shared between tree and traits, need at least 2", kept)
	}

	outTraits := make(phylo.TraitVector, kept)
	for label, v := range traits {
		if _, ok := t.TipID(label); ok {
			outTraits[label] = v
		}
	}

	if len(report.DroppedTips) == 0 {
		return t, outTraits, report, nil
	}

	// Rebuild the surviving topology. survivor carries the node in the new
	// builder plus the accumulated length of the edge above it (splices sum
	// the collapsed lengths).
	type survivor struct {
		id     phylo.NodeID
		length float64
	}
	var builderOpts []phylo.BuilderOption
	if !t.Bifurcating() {
		// The input was admitted with polytomies, so the pruned
		// topology may still contain them.
		builderOpts = append(builderOpts, phylo.AllowPolytomies())
	}
	b := phylo.NewBuilder(builderOpts...)
	var prune func(id phylo.NodeID, length float64) *survivor
	prune = func(id phylo.NodeID, length float64) *survivor {
		if t.IsTip(id) {
			label := t.Label(id)
			if _, ok := outTraits[label]; !ok {
				return nil
			}
			nid, _ := b.AddTip(label)
			return &survivor{id: nid, length: length}
		}

		var alive []*survivor
		for _, c := range t.ChildIDs(id) {
			if s := prune(c, t.BranchLength(c)); s != nil {
				alive = append(alive, s)
			}
		}
		switch len(alive) {
		case 0:
			return nil
		case 1:
			// Collapse this node: splice the lone child upward.
			return &survivor{id: alive[0].id, length: length + alive[0].length}
		default:
			nid := b.AddInternal()
			for _, s := range alive {
				b.Connect(nid, s.id, s.length)
			}
			return &survivor{id: nid, length: length}
		}
	}

	prune(t.Root(), 0)
	out, err := b.Build()
	if err != nil {
		return nil, nil, report, errors.Wrap(errors.ErrCodeInternal, err, "rebuilding pruned tree")
	}
	return out, outTraits, report, nil
}

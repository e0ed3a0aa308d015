package pic

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/treecontrast/pkg/phylo"
)

var (
	// ErrTraitMismatch is returned by [Compute] when the trait vector's key
	// set does not equal the tree's tip-label set. The error message lists
	// the missing and extra labels. Reconcile datasets with treeio.Reconcile
	// before computing.
	ErrTraitMismatch = errors.New("trait labels do not match tree tips")

	// ErrNonFiniteTrait is returned by [Compute] when a trait observation is
	// NaN or infinite. The tree side rejects non-finite branch lengths at
	// build time; this is the trait-side counterpart, caught before the
	// traversal so a bad observation never propagates into the contrasts.
	ErrNonFiniteTrait = errors.New("non-finite trait value")

	// ErrDegenerateBranch is returned by [Compute] when both children of an
	// internal node have zero adjusted branch length, which would divide by
	// zero in the weighted average. The offending node is named in the
	// message. The error is never converted to an Inf or NaN result.
	ErrDegenerateBranch = errors.New("degenerate branch lengths")
)

// Options configures a contrast computation.
type Options struct {
	// Standardize divides each raw contrast by the square root of its
	// variance. The variance is reported either way, so callers can
	// standardize later with full information.
	Standardize bool
}

// runState is the per-computation scratch overlay: adjusted branch lengths
// and node values indexed by NodeID. It is allocated per Compute call and
// never written into the shared Tree, so concurrent computations over one
// tree cannot observe each other's intermediate state.
type runState struct {
	adjusted []float64 // effective length of the edge above each node
	value    []float64 // tip observation or estimated ancestral value
}

// Compute runs Felsenstein's independent contrasts over t with the given
// trait observations. It returns one contrast per internal node, keyed by
// that node's ID, together with the estimated ancestral values.
//
// The computation is a single post-order pass. At each internal node n with
// children a and b (values xA, xB at adjusted branch lengths vA, vB):
//
//	contrast(n)   = xA - xB
//	variance(n)   = vA + vB
//	ancestral(n)  = (xA*vB + xB*vA) / (vA + vB)
//	adjusted(n)   = rawLength(n) + vA*vB/(vA+vB)   [skipped at the root]
//
// The ancestral value uses the weighted-sum form of the inverse-variance
// average; the two textbook forms are algebraically identical but differ in
// float rounding, and this implementation commits to the weighted-sum form.
// The contrast sign convention is left child minus right child, where left
// is the child attached first at build time.
//
// Compute is pure and deterministic: identical inputs produce bit-identical
// results, and no partial ContrastSet is ever returned on error.
func Compute(t *phylo.Tree, traits phylo.TraitVector, opts Options) (*ContrastSet, error) {
	if !t.Bifurcating() {
		return nil, fmt.Errorf("%w: tree has unresolved polytomies (run Binarize first)",
			phylo.ErrMalformedTree)
	}
	if err := checkTraits(t, traits); err != nil {
		return nil, err
	}

	order, err := phylo.PostOrder(t)
	if err != nil {
		return nil, err
	}

	state := runState{
		adjusted: make([]float64, t.NodeCount()),
		value:    make([]float64, t.NodeCount()),
	}
	for _, id := range t.Tips() {
		state.adjusted[id] = t.BranchLength(id)
		state.value[id] = traits[t.Label(id)]
	}

	cs := newContrastSet(t.InternalCount(), opts.Standardize)
	root := t.Root()
	for _, id := range order {
		left, right, _ := t.Children(id)
		vA, vB := state.adjusted[left], state.adjusted[right]
		if vA+vB == 0 {
			return nil, fmt.Errorf("%w: node %d (children %d, %d both at zero adjusted length)",
				ErrDegenerateBranch, id, left, right)
		}
		xA, xB := state.value[left], state.value[right]

		state.value[id] = (xA*vB + xB*vA) / (vA + vB)
		state.adjusted[id] = t.BranchLength(id)
		if id != root {
			// Absorb the resolved subtree's variance into the edge above,
			// before this node feeds its own parent's weighted average.
			// Tip edges are never adjusted.
			state.adjusted[id] += vA * vB / (vA + vB)
		}

		c := Contrast{
			Node:     id,
			Value:    xA - xB,
			Variance: vA + vB,
		}
		if opts.Standardize {
			s := c.Value / math.Sqrt(c.Variance)
			c.Standardized = &s
		}
		cs.add(c, state.value[id])
	}

	return cs, nil
}

// checkTraits verifies the bijection between trait labels and tree tips and
// that every observation is a finite number.
func checkTraits(t *phylo.Tree, traits phylo.TraitVector) error {
	var missing, extra []string
	for _, label := range t.TipLabels() {
		v, ok := traits[label]
		if !ok {
			missing = append(missing, label)
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: tip %q has value %v", ErrNonFiniteTrait, label, v)
		}
	}
	for label := range traits {
		if _, ok := t.TipID(label); !ok {
			extra = append(extra, label)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	slices.Sort(missing)
	slices.Sort(extra)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing from traits: %s", strings.Join(missing, ", ")))
	}
	if len(extra) > 0 {
		parts = append(parts, fmt.Sprintf("absent from tree: %s", strings.Join(extra, ", ")))
	}
	return fmt.Errorf("%w: %s", ErrTraitMismatch, strings.Join(parts, "; "))
}

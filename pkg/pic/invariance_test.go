package pic

import (
	"slices"
	"testing"

	"github.com/matzehuels/treecontrast/pkg/phylo"
)

// primateTreeShuffled builds the same primate topology with a different node
// creation order (internals first, tips interleaved). Node IDs differ from
// primateTree but the child attachment order at every node is identical.
func primateTreeShuffled(t *testing.T) *phylo.Tree {
	t.Helper()
	b := phylo.NewBuilder()
	root := b.AddInternal()
	hpma := b.AddInternal()
	hpm := b.AddInternal()
	hp := b.AddInternal()
	galago, _ := b.AddTip("Galago")
	ateles, _ := b.AddTip("Ateles")
	macaca, _ := b.AddTip("Macaca")
	homo, _ := b.AddTip("Homo")
	pongo, _ := b.AddTip("Pongo")

	b.Connect(hp, homo, 0.21)
	b.Connect(hp, pongo, 0.21)
	b.Connect(hpm, hp, 0.28)
	b.Connect(hpm, macaca, 0.49)
	b.Connect(hpma, hpm, 0.13)
	b.Connect(hpma, ateles, 0.62)
	b.Connect(root, hpma, 0.38)
	b.Connect(root, galago, 1.00)

	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func TestStorageOrderInvariance(t *testing.T) {
	orig, _ := primateTree(t)
	shuffled := primateTreeShuffled(t)

	a, err := Compute(orig, primateTraits(), Options{Standardize: true})
	if err != nil {
		t.Fatalf("Compute(orig): %v", err)
	}
	b, err := Compute(shuffled, primateTraits(), Options{Standardize: true})
	if err != nil {
		t.Fatalf("Compute(shuffled): %v", err)
	}

	// Node IDs differ between the two trees, so compare the numeric results
	// as sorted value sets. Identical topology, branch lengths, and child
	// order must give bit-identical arithmetic.
	type row struct{ value, variance, std float64 }
	collect := func(cs *ContrastSet) []row {
		rows := make([]row, 0, cs.Len())
		for _, c := range cs.Sorted() {
			rows = append(rows, row{c.Value, c.Variance, *c.Standardized})
		}
		slices.SortFunc(rows, func(x, y row) int {
			switch {
			case x.value < y.value:
				return -1
			case x.value > y.value:
				return 1
			default:
				return 0
			}
		})
		return rows
	}

	ra, rb := collect(a), collect(b)
	if !slices.Equal(ra, rb) {
		t.Errorf("results differ across storage orders:\n%v\n%v", ra, rb)
	}

	anc := func(cs *ContrastSet) []float64 {
		vals := make([]float64, 0, len(cs.Ancestral))
		for _, id := range cs.Nodes() {
			vals = append(vals, cs.Ancestral[id])
		}
		slices.Sort(vals)
		return vals
	}
	if !slices.Equal(anc(a), anc(b)) {
		t.Errorf("ancestral values differ across storage orders")
	}
}

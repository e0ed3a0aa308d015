package pic_test

import (
	"fmt"

	"github.com/matzehuels/treecontrast/pkg/phylo"
	"github.com/matzehuels/treecontrast/pkg/pic"
)

func ExampleCompute() {
	// Two sister species with a measured trait.
	b := phylo.NewBuilder()
	a, _ := b.AddTip("A")
	c, _ := b.AddTip("B")
	root := b.AddInternal()
	_ = b.Connect(root, a, 1.0)
	_ = b.Connect(root, c, 3.0)
	tree, _ := b.Build()

	traits := phylo.TraitVector{"A": 1.0, "B": 5.0}

	cs, _ := pic.Compute(tree, traits, pic.Options{Standardize: true})
	for _, contrast := range cs.Sorted() {
		fmt.Printf("contrast %.1f variance %.1f standardized %.1f\n",
			contrast.Value, contrast.Variance, *contrast.Standardized)
	}
	fmt.Printf("root estimate %.1f\n", cs.Ancestral[tree.Root()])
	// Output:
	// contrast -4.0 variance 4.0 standardized -2.0
	// root estimate 2.0
}

func ExampleCompute_polytomy() {
	// A three-way split must be resolved before contrasts exist.
	b := phylo.NewBuilder(phylo.AllowPolytomies())
	a, _ := b.AddTip("A")
	c, _ := b.AddTip("B")
	d, _ := b.AddTip("C")
	root := b.AddInternal()
	_ = b.Connect(root, a, 1.0)
	_ = b.Connect(root, c, 1.0)
	_ = b.Connect(root, d, 1.0)
	tree, _ := b.Build()

	resolved, added := phylo.Binarize(tree)
	fmt.Println("synthetic nodes:", added)

	cs, _ := pic.Compute(resolved, phylo.TraitVector{"A": 1, "B": 2, "C": 3}, pic.Options{})
	fmt.Println("contrasts:", cs.Len())
	// Output:
	// synthetic nodes: 1
	// contrasts: 2
}

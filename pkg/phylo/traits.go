package phylo

import (
	"maps"
	"slices"
)

// TraitVector maps tip labels to observed continuous trait values.
// A computation requires the key set to equal the tree's tip-label set
// exactly; reconciling mismatched datasets is the loader's job (see package
// treeio), never the core's.
type TraitVector map[string]float64

// Labels returns the trait's tip labels in sorted order.
func (v TraitVector) Labels() []string {
	labels := make([]string, 0, len(v))
	for label := range v {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}

// Clone returns a copy of the vector.
func (v TraitVector) Clone() TraitVector {
	return maps.Clone(v)
}

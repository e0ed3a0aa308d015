// Package phylo provides the validated tree model for phylogenetic contrast
// computation.
//
// A [Tree] is a rooted tree with branch lengths, labeled tips, and exactly
// two children per internal node. Trees are built incrementally with a
// [Builder] and sealed by Build, which enforces every structural invariant
// the contrasts algorithm depends on (single root, connectivity, strict
// bifurcation, unique tip labels, finite non-negative branch lengths). Once
// built, a Tree is immutable and safe for concurrent reads.
//
// [PostOrder] produces the deterministic tips-before-parents schedule used by
// the computation in package pic, and [Binarize] resolves multifurcating
// trees built with [AllowPolytomies] into strictly bifurcating ones using a
// documented zero-length ladder policy.
package phylo

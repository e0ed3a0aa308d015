// Package pic implements Felsenstein's phylogenetically independent
// contrasts.
//
// Given a validated bifurcating [phylo.Tree] and a trait vector covering
// exactly its tips, [Compute] produces one contrast per internal node in a
// single post-order pass: branch lengths are adjusted to absorb the variance
// of already-resolved subtrees, ancestral values are estimated as
// inverse-variance weighted averages, and each sibling pair's difference is
// emitted with its variance. The resulting contrasts are statistically
// independent under the Brownian-motion model and safe for downstream
// regression without phylogenetic pseudo-replication.
//
// The package holds no global state; every call takes all inputs as
// arguments and writes derived quantities into per-call scratch space, so a
// shared Tree may back concurrent computations for independent traits.
package pic

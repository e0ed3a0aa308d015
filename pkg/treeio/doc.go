// Package treeio converts between validated trees and the canonical JSON
// document format used by the CLI, the HTTP API, storage, and caching.
//
// The document format is the module's own: a flat node list plus a
// parent/child edge list with branch lengths, where edge order fixes child
// order (and with it the contrast sign convention). It is intentionally not
// a phylogenetic interchange format; converting newick, nexus, or tabular
// files into Documents is left to external loaders.
//
// [Reconcile] implements the loader-side obligation of the computation
// contract: pruning a tree and trait vector to their shared tip set with a
// report of everything dropped, so package pic only ever sees exactly
// matching inputs.
package treeio

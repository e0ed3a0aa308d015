// Package pipeline provides the core contrast pipeline for treecontrast.
//
// This package implements the complete load → compute flow that can be used
// by CLI and API components. By centralizing this logic, we ensure consistent
// behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Load: Read and validate the tree and trait documents, reconcile them
//     to a shared tip set, and optionally resolve polytomies
//  2. Compute: Run the contrast pass and summarize the result
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    TreePath:    "primates.tree.json",
//	    TraitPath:   "body-mass.json",
//	    Standardize: true,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range result.Contrasts.Sorted() {
//	    fmt.Println(c.Node, c.Value)
//	}
//
// Run individual stages:
//
//	// Load only
//	in, err := runner.Load(ctx, opts)
//
//	// Compute with an already-loaded input
//	contrasts, err := runner.Compute(ctx, in, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treecontrast/pkg/cache"
	"github.com/matzehuels/treecontrast/pkg/phylo"
	"github.com/matzehuels/treecontrast/pkg/pic"
	"github.com/matzehuels/treecontrast/pkg/treeio"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultStandardize controls whether contrasts are divided by the
	// square root of their variance. Standardized contrasts are what the
	// comparative method consumes, so this defaults to on.
	DefaultStandardize = true
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the contrast pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options. Either the *Path fields or the inline documents must
	// be set; inline documents take precedence.
	TreePath  string                `json:"tree_path,omitempty"`
	TraitPath string                `json:"trait_path,omitempty"`
	Tree      *treeio.Document      `json:"tree,omitempty"`
	Traits    *treeio.TraitDocument `json:"traits,omitempty"`

	// Load options
	Reconcile         bool `json:"reconcile,omitempty"`          // prune tree/traits to their shared tip set
	ResolvePolytomies bool `json:"resolve_polytomies,omitempty"` // binarize multifurcations before computing

	// Compute options
	Raw     bool `json:"raw,omitempty"` // report raw contrasts instead of standardized
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Standardize reports whether contrasts should be standardized.
func (o *Options) Standardize() bool {
	return !o.Raw
}

// ResultKeyOpts returns cache key options for the compute stage.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Standardize: o.Standardize(),
	}
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.Tree == nil && o.TreePath == "" {
		return fmt.Errorf("tree or tree_path is required")
	}
	if o.Traits == nil && o.TraitPath == "" {
		return fmt.Errorf("traits or trait_path is required")
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// =============================================================================
// Result Types
// =============================================================================

// Input is the output of the load stage: a validated tree/trait pair that
// satisfies the exact-match contract of [pic.Compute], plus the content
// hashes used for cache keys.
type Input struct {
	// Tree is the validated (and possibly reconciled or binarized) tree.
	Tree *phylo.Tree

	// Traits is the trait vector matching Tree's tip set.
	Traits phylo.TraitVector

	// TreeHash and TraitHash are content hashes of the canonical serialized
	// forms, after reconciliation and binarization.
	TreeHash  string
	TraitHash string

	// Reconciliation reports what Reconcile dropped. Empty unless
	// Options.Reconcile was set and inputs disagreed.
	Reconciliation treeio.Report

	// SyntheticNodes is the number of nodes added by polytomy resolution.
	SyntheticNodes int
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Input is the validated input the contrasts were computed from.
	Input *Input

	// Contrasts is the computed contrast set.
	Contrasts *pic.ContrastSet

	// Summary contains descriptive statistics of the standardized contrasts.
	Summary pic.Summary

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TipCount      int
	ContrastCount int
	LoadTime      time.Duration
	ComputeTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ComputeHit bool // Whether the contrast set came from cache
}

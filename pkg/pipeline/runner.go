package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treecontrast/pkg/cache"
	"github.com/matzehuels/treecontrast/pkg/observability"
	"github.com/matzehuels/treecontrast/pkg/phylo"
	"github.com/matzehuels/treecontrast/pkg/pic"
	"github.com/matzehuels/treecontrast/pkg/treeio"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → compute pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	in, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Input = in
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.TipCount = in.Tree.TipCount()

	r.Logger.Info("loaded inputs",
		"tips", in.Tree.TipCount(),
		"dropped_tips", len(in.Reconciliation.DroppedTips),
		"duration", result.Stats.LoadTime)

	// Stage 2: Compute
	computeStart := time.Now()
	contrasts, computeHit, err := r.ComputeWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}
	result.Contrasts = contrasts
	result.Summary = contrasts.Summarize()
	result.Stats.ComputeTime = time.Since(computeStart)
	result.Stats.ContrastCount = contrasts.Len()
	result.CacheInfo.ComputeHit = computeHit

	r.Logger.Info("computed contrasts",
		"contrasts", contrasts.Len(),
		"cached", computeHit,
		"duration", result.Stats.ComputeTime)

	return result, nil
}

// Load reads, validates, and reconciles the tree and trait inputs.
func (r *Runner) Load(ctx context.Context, opts Options) (*Input, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Compute().OnLoadStart(ctx, opts.TreePath, opts.TraitPath)

	in, err := load(opts)
	tips := 0
	if in != nil {
		tips = in.Tree.TipCount()
	}
	observability.Compute().OnLoadComplete(ctx, tips, time.Since(start), err)
	return in, err
}

// load performs the actual load work without instrumentation.
func load(opts Options) (*Input, error) {
	var builderOpts []phylo.BuilderOption
	if opts.ResolvePolytomies {
		builderOpts = append(builderOpts, phylo.AllowPolytomies())
	}

	// Tree
	var tree *phylo.Tree
	var err error
	if opts.Tree != nil {
		tree, err = treeio.ToTree(*opts.Tree, builderOpts...)
	} else {
		tree, err = treeio.ReadTreeFile(opts.TreePath, builderOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}

	// Traits
	var doc treeio.TraitDocument
	if opts.Traits != nil {
		doc = *opts.Traits
	} else {
		doc, err = treeio.ReadTraitsFile(opts.TraitPath)
		if err != nil {
			return nil, fmt.Errorf("reading traits: %w", err)
		}
	}
	traits := doc.Vector()

	in := &Input{}

	if opts.Reconcile {
		tree, traits, in.Reconciliation, err = treeio.Reconcile(tree, traits)
		if err != nil {
			return nil, err
		}
	}

	if opts.ResolvePolytomies {
		tree, in.SyntheticNodes = phylo.Binarize(tree)
	}

	in.Tree = tree
	in.Traits = traits

	// Content hashes over the canonical serialized forms, so that two loads
	// of the same logical inputs produce the same cache keys.
	treeData, err := treeio.MarshalTree(tree)
	if err != nil {
		return nil, fmt.Errorf("hashing tree: %w", err)
	}
	traitData, err := treeio.MarshalTraits(doc.Name, traits)
	if err != nil {
		return nil, fmt.Errorf("hashing traits: %w", err)
	}
	in.TreeHash = cache.Hash(treeData)
	in.TraitHash = cache.Hash(traitData)

	return in, nil
}

// ComputeWithCacheInfo runs the contrast pass with caching and returns cache
// hit info.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, in *Input, opts Options) (*pic.ContrastSet, bool, error) {
	r.applyLogger(&opts)

	cacheKey := r.Keyer.ResultKey(in.TreeHash, in.TraitHash, opts.ResultKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cs pic.ContrastSet
			if err := json.Unmarshal(data, &cs); err == nil {
				observability.Cache().OnCacheHit(ctx, "result")
				return &cs, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "result")
	}

	// Compute
	start := time.Now()
	observability.Compute().OnComputeStart(ctx, in.Tree.TipCount())
	cs, err := pic.Compute(in.Tree, in.Traits, pic.Options{Standardize: opts.Standardize()})
	count := 0
	if cs != nil {
		count = cs.Len()
	}
	observability.Compute().OnComputeComplete(ctx, in.Tree.TipCount(), count, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(cs); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLResult)
		observability.Cache().OnCacheSet(ctx, "result", len(data))
	}

	return cs, false, nil // Cache miss
}

// Compute is a convenience wrapper that calls ComputeWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Compute(ctx context.Context, in *Input, opts Options) (*pic.ContrastSet, error) {
	cs, _, err := r.ComputeWithCacheInfo(ctx, in, opts)
	return cs, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

package pipeline

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treecontrast/pkg/cache"
	"github.com/matzehuels/treecontrast/pkg/phylo"
	"github.com/matzehuels/treecontrast/pkg/treeio"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func sampleDocs(t *testing.T) (treeio.Document, treeio.TraitDocument) {
	t.Helper()
	b := phylo.NewBuilder()
	a, _ := b.AddTip("A")
	c, _ := b.AddTip("B")
	d, _ := b.AddTip("C")
	ab := b.AddInternal()
	root := b.AddInternal()
	b.Connect(ab, a, 1.0)
	b.Connect(ab, c, 1.0)
	b.Connect(root, ab, 0.5)
	b.Connect(root, d, 2.0)
	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	traits := treeio.TraitDocument{
		Name:   "mass",
		Values: map[string]float64{"A": 1.0, "B": 3.0, "C": 5.0},
	}
	return treeio.FromTree(tree), traits
}

func TestOptionsValidateForLoad(t *testing.T) {
	// Missing tree
	opts := Options{TraitPath: "traits.json"}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing tree should fail")
	}

	// Missing traits
	opts = Options{TreePath: "tree.json"}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing traits should fail")
	}

	// Valid with paths
	opts = Options{TreePath: "tree.json", TraitPath: "traits.json"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}

	// Logger default was set
	if opts.Logger == nil {
		t.Error("Logger default should be set")
	}
}

func TestStandardizeDefault(t *testing.T) {
	opts := Options{}
	if !opts.Standardize() {
		t.Error("contrasts should be standardized by default")
	}
	opts.Raw = true
	if opts.Standardize() {
		t.Error("Raw should disable standardization")
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	tree, traits := sampleDocs(t)

	runner := NewRunner(cache.NewNullCache(), nil, quietLogger())
	defer runner.Close()

	result, err := runner.Execute(ctx, Options{Tree: &tree, Traits: &traits})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.TipCount != 3 {
		t.Errorf("TipCount = %d, want 3", result.Stats.TipCount)
	}
	if result.Stats.ContrastCount != 2 {
		t.Errorf("ContrastCount = %d, want 2", result.Stats.ContrastCount)
	}
	if result.CacheInfo.ComputeHit {
		t.Error("NullCache should never hit")
	}
	if !result.Contrasts.Standardized {
		t.Error("contrasts should be standardized by default")
	}
	if result.Summary.N != 2 {
		t.Errorf("Summary.N = %d, want 2", result.Summary.N)
	}
	if result.Input.TreeHash == "" || result.Input.TraitHash == "" {
		t.Error("content hashes should be set")
	}
}

func TestExecuteCacheHit(t *testing.T) {
	ctx := context.Background()
	tree, traits := sampleDocs(t)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(c, nil, quietLogger())
	defer runner.Close()

	opts := Options{Tree: &tree, Traits: &traits}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.ComputeHit {
		t.Error("first run should miss")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.ComputeHit {
		t.Error("second run should hit")
	}

	// Cached result matches the computed one
	if second.Contrasts.Len() != first.Contrasts.Len() {
		t.Fatalf("cached Len = %d, want %d", second.Contrasts.Len(), first.Contrasts.Len())
	}
	for _, id := range first.Contrasts.Nodes() {
		want := first.Contrasts.Contrasts[id]
		got, ok := second.Contrasts.Contrasts[id]
		if !ok {
			t.Fatalf("cached set missing node %d", id)
		}
		if got.Value != want.Value || got.Variance != want.Variance {
			t.Errorf("node %d: cached contrast %+v, want %+v", id, got, want)
		}
	}

	// Refresh bypasses the cache
	opts.Refresh = true
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.ComputeHit {
		t.Error("refresh run should miss")
	}
}

func TestExecuteRawAndStandardizedCachedSeparately(t *testing.T) {
	ctx := context.Background()
	tree, traits := sampleDocs(t)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(c, nil, quietLogger())
	defer runner.Close()

	std, err := runner.Execute(ctx, Options{Tree: &tree, Traits: &traits})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	raw, err := runner.Execute(ctx, Options{Tree: &tree, Traits: &traits, Raw: true})
	if err != nil {
		t.Fatalf("Execute raw: %v", err)
	}
	if raw.CacheInfo.ComputeHit {
		t.Error("raw run must not reuse the standardized entry")
	}
	if raw.Contrasts.Standardized == std.Contrasts.Standardized {
		t.Error("raw and standardized runs should differ")
	}
}

func TestLoadWithReconcile(t *testing.T) {
	ctx := context.Background()
	tree, traits := sampleDocs(t)
	traits.Values["Zebra"] = 9.0 // no matching tip

	runner := NewRunner(nil, nil, quietLogger())
	defer runner.Close()

	// Without reconciliation the mismatch reaches the computation and fails.
	if _, err := runner.Execute(ctx, Options{Tree: &tree, Traits: &traits}); err == nil {
		t.Error("mismatched inputs should fail without Reconcile")
	}

	in, err := runner.Load(ctx, Options{Tree: &tree, Traits: &traits, Reconcile: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"Zebra"}; len(in.Reconciliation.DroppedTraits) != 1 || in.Reconciliation.DroppedTraits[0] != want[0] {
		t.Errorf("DroppedTraits = %v, want %v", in.Reconciliation.DroppedTraits, want)
	}
}

func TestLoadResolvesPolytomies(t *testing.T) {
	ctx := context.Background()

	b := phylo.NewBuilder(phylo.AllowPolytomies())
	a, _ := b.AddTip("A")
	c, _ := b.AddTip("B")
	d, _ := b.AddTip("C")
	root := b.AddInternal()
	b.Connect(root, a, 1.0)
	b.Connect(root, c, 1.0)
	b.Connect(root, d, 1.0)
	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := treeio.FromTree(tree)
	traits := treeio.TraitDocument{Values: map[string]float64{"A": 1, "B": 2, "C": 3}}

	runner := NewRunner(nil, nil, quietLogger())
	defer runner.Close()

	// Polytomy rejected unless resolution is requested.
	if _, err := runner.Execute(ctx, Options{Tree: &doc, Traits: &traits}); err == nil {
		t.Error("polytomy should fail without ResolvePolytomies")
	}

	result, err := runner.Execute(ctx, Options{Tree: &doc, Traits: &traits, ResolvePolytomies: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Input.SyntheticNodes != 1 {
		t.Errorf("SyntheticNodes = %d, want 1", result.Input.SyntheticNodes)
	}
	if result.Stats.ContrastCount != 2 {
		t.Errorf("ContrastCount = %d, want 2", result.Stats.ContrastCount)
	}
}

func TestLoadFromFiles(t *testing.T) {
	ctx := context.Background()
	treeDoc, traits := sampleDocs(t)

	dir := t.TempDir()
	tree, err := treeio.ToTree(treeDoc)
	if err != nil {
		t.Fatalf("ToTree: %v", err)
	}
	treePath := dir + "/tree.json"
	if err := treeio.WriteTreeFile(tree, treePath); err != nil {
		t.Fatalf("WriteTreeFile: %v", err)
	}
	traitPath := dir + "/traits.json"
	data, err := treeio.MarshalTraits(traits.Name, traits.Vector())
	if err != nil {
		t.Fatalf("MarshalTraits: %v", err)
	}
	if err := os.WriteFile(traitPath, data, 0644); err != nil {
		t.Fatalf("writing traits: %v", err)
	}

	runner := NewRunner(nil, nil, quietLogger())
	defer runner.Close()

	result, err := runner.Execute(ctx, Options{TreePath: treePath, TraitPath: traitPath})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.ContrastCount != 2 {
		t.Errorf("ContrastCount = %d, want 2", result.Stats.ContrastCount)
	}
}

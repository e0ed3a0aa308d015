package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/treecontrast/pkg/errors"
	"github.com/matzehuels/treecontrast/pkg/pic"
	"github.com/matzehuels/treecontrast/pkg/pipeline"
	"github.com/matzehuels/treecontrast/pkg/treeio"
)

func sampleRun(t *testing.T, created time.Time) *Run {
	t.Helper()
	run := &Run{
		ID:        "run-" + created.Format("150405.000"),
		CreatedAt: created,
		Tree: treeio.Document{
			Nodes: []treeio.Node{
				{ID: "n0", Kind: treeio.KindTip, Label: "A"},
				{ID: "n1", Kind: treeio.KindTip, Label: "B"},
				{ID: "n2", Kind: treeio.KindInternal},
			},
			Edges: []treeio.Edge{
				{Parent: "n2", Child: "n0", Length: 1},
				{Parent: "n2", Child: "n1", Length: 1},
			},
		},
		Traits:    treeio.TraitDocument{Values: map[string]float64{"A": 1, "B": 2}},
		Options:   pipeline.Options{},
		Contrasts: &pic.ContrastSet{},
	}
	return run
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	run := sampleRun(t, time.Now())
	if err := s.Put(ctx, run); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("Get ID = %q, want %q", got.ID, run.ID)
	}
	if len(got.Tree.Nodes) != 3 {
		t.Errorf("Tree nodes = %d, want 3", len(got.Tree.Nodes))
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "nope")
	if !errors.Is(err, errors.ErrCodeRunNotFound) {
		t.Errorf("err = %v, want RUN_NOT_FOUND", err)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now()
	for i := 0; i < 3; i++ {
		if err := s.Put(ctx, sampleRun(t, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("List len = %d, want 3", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].CreatedAt.After(runs[i-1].CreatedAt) {
			t.Error("List should return newest first")
		}
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited List len = %d, want 2", len(limited))
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	run := sampleRun(t, time.Now())
	if err := s.Put(ctx, run); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, run.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, run.ID); !errors.Is(err, errors.ErrCodeRunNotFound) {
		t.Errorf("Get after Delete = %v, want RUN_NOT_FOUND", err)
	}
	if err := s.Delete(ctx, run.ID); !errors.Is(err, errors.ErrCodeRunNotFound) {
		t.Errorf("second Delete = %v, want RUN_NOT_FOUND", err)
	}
}

func TestNewRunAssignsID(t *testing.T) {
	tree := treeio.Document{}
	traits := treeio.TraitDocument{}
	result := &pipeline.Result{
		Input:     &pipeline.Input{},
		Contrasts: &pic.ContrastSet{},
	}

	r1 := NewRun(tree, traits, pipeline.Options{}, result)
	r2 := NewRun(tree, traits, pipeline.Options{}, result)
	if r1.ID == "" || r2.ID == "" {
		t.Fatal("NewRun should assign IDs")
	}
	if r1.ID == r2.ID {
		t.Error("NewRun should assign unique IDs")
	}
	if r1.CreatedAt.IsZero() {
		t.Error("NewRun should set CreatedAt")
	}
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/treecontrast/pkg/errors"
	"github.com/matzehuels/treecontrast/pkg/observability"
)

// MemoryStore is an in-memory Store for tests and single-process
// deployments. Records are lost on shutdown.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// Put stores a run.
func (s *MemoryStore) Put(ctx context.Context, run *Run) error {
	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()
	observability.Store().OnStorePut(ctx, run.ID)
	return nil
}

// Get retrieves a run by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Run, error) {
	start := time.Now()
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	observability.Store().OnStoreGet(ctx, id, ok, time.Since(start))
	if !ok {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
	}
	return run, nil
}

// List returns up to limit runs, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	runs := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Delete removes a run by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
	}
	delete(s.runs, id)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

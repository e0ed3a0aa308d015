// Package store persists completed contrast runs for the API server.
//
// A Run is the durable record of one pipeline execution: the exact input
// documents, the options, and the computed contrasts. Two backends are
// provided: [MemoryStore] for tests and single-process deployments, and
// [MongoStore] for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/treecontrast/pkg/pic"
	"github.com/matzehuels/treecontrast/pkg/pipeline"
	"github.com/matzehuels/treecontrast/pkg/treeio"
)

// Run is the persisted record of one contrast computation. The input
// documents are stored verbatim so a run can be replayed or audited later.
type Run struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Tree   treeio.Document      `json:"tree" bson:"tree"`
	Traits treeio.TraitDocument `json:"traits" bson:"traits"`

	Options pipeline.Options `json:"options" bson:"options"`

	Contrasts      *pic.ContrastSet `json:"contrasts" bson:"contrasts"`
	Summary        pic.Summary      `json:"summary" bson:"summary"`
	Reconciliation treeio.Report    `json:"reconciliation,omitempty" bson:"reconciliation,omitempty"`
}

// NewRun assembles a Run from a pipeline result, assigning a fresh ID and
// timestamp.
func NewRun(tree treeio.Document, traits treeio.TraitDocument, opts pipeline.Options, result *pipeline.Result) *Run {
	return &Run{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Tree:           tree,
		Traits:         traits,
		Options:        opts,
		Contrasts:      result.Contrasts,
		Summary:        result.Summary,
		Reconciliation: result.Input.Reconciliation,
	}
}

// Store persists runs. Implementations must be safe for concurrent use.
type Store interface {
	// Put stores a run. Putting an existing ID overwrites the record.
	Put(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. Returns RUN_NOT_FOUND if absent.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first. A limit of 0 means no
	// limit.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run by ID. Returns RUN_NOT_FOUND if absent.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}

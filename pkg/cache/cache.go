// Package cache provides pluggable byte caching for contrast computations.
//
// Three backends are provided:
//   - [FileCache]: directory-backed, for CLI usage
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: disabled caching, for tests and one-shot runs
//
// Keys are generated through a [Keyer] so that callers never concatenate
// raw strings. Key components are hashed; changing any input (tree bytes,
// trait bytes, computation options) yields a different key.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was found; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Default TTLs for the cacheable stages. Tree documents and results are
// both content-addressed, so long TTLs are safe; stale entries can only be
// reached through a stale key.
const (
	// TTLTree is the expiration for validated tree documents.
	TTLTree = 7 * 24 * time.Hour

	// TTLResult is the expiration for contrast results.
	TTLResult = 30 * 24 * time.Hour
)

// ResultKeyOpts are the computation options that affect a cached result.
// Any field change must produce a different key.
type ResultKeyOpts struct {
	Standardize bool `json:"standardize"`
}

// Keyer generates cache keys for the different cacheable stages.
type Keyer interface {
	// TreeKey generates a key for a validated tree document, derived
	// from the serialized document bytes.
	TreeKey(treeHash string) string

	// ResultKey generates a key for a contrast result, derived from the
	// tree hash, the trait hash, and the computation options.
	ResultKey(treeHash, traitHash string, opts ResultKeyOpts) string
}

// DefaultKeyer is the standard key generation strategy.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TreeKey generates a key for a validated tree document.
func (k *DefaultKeyer) TreeKey(treeHash string) string {
	return "tree:" + treeHash
}

// ResultKey generates a key for a contrast result.
func (k *DefaultKeyer) ResultKey(treeHash, traitHash string, opts ResultKeyOpts) string {
	return hashKey("result", treeHash, traitHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

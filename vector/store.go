// Package vector provides vector storage and similarity search over a named
// collection of embedding points.
package vector

import "context"

// SearchResult is one scored hit from a similarity search, ordered descending
// by score. Score is cosine similarity in [0,1].
type SearchResult struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Store provides storage and cosine similarity search for embedding vectors.
// Each store is bound to one collection with a fixed dimension.
type Store interface {
	// EnsureCollection checks collection existence and creates it if absent.
	// Idempotent.
	EnsureCollection(ctx context.Context) error

	// CreateCollection creates the collection with the configured dimension
	// and cosine distance.
	CreateCollection(ctx context.Context) error

	// DeleteCollection removes the collection and all its points.
	DeleteCollection(ctx context.Context) error

	// Search returns the limit nearest neighbors to embedding. An absent
	// collection yields an empty result, not an error.
	Search(ctx context.Context, embedding []float64, limit int) ([]SearchResult, error)

	// Insert stores embedding with payload under a newly assigned ID and
	// returns that ID. Rejected writes (dimension mismatch, connectivity)
	// propagate as errors.
	Insert(ctx context.Context, embedding []float64, payload any) (string, error)

	// Close releases resources.
	Close() error
}

package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nutrilog/foodvision/core"
)

type memoryPoint struct {
	id        string
	embedding []float64
	payload   map[string]any
}

// MemoryStore is an in-memory vector store for development and testing. It
// mirrors the external stores' behavior, including the collection lifecycle.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	exists    bool
	points    map[string]memoryPoint
}

// NewMemoryStore creates an in-memory store for vectors of the given dimension.
// The collection starts absent, as on a fresh external store.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension: dimension,
		points:    make(map[string]memoryPoint),
	}
}

// EnsureCollection creates the collection if it does not exist yet.
func (s *MemoryStore) EnsureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exists = true
	return nil
}

// CreateCollection creates the collection.
func (s *MemoryStore) CreateCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exists = true
	return nil
}

// DeleteCollection drops the collection and all points in it.
func (s *MemoryStore) DeleteCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exists = false
	s.points = make(map[string]memoryPoint)
	return nil
}

// Search finds the nearest points by brute-force cosine similarity. An absent
// collection yields an empty result.
func (s *MemoryStore) Search(ctx context.Context, embedding []float64, limit int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.exists {
		return nil, nil
	}

	results := make([]SearchResult, 0, len(s.points))
	for _, p := range s.points {
		results = append(results, SearchResult{
			ID:      p.id,
			Score:   CosineSimilarity(embedding, p.embedding),
			Payload: p.payload,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Insert stores the embedding with its payload under a new UUID.
func (s *MemoryStore) Insert(ctx context.Context, embedding []float64, payload any) (string, error) {
	if len(embedding) != s.dimension {
		return "", core.NewStoreError("memory insert",
			fmt.Errorf("%w: got %d, collection expects %d", core.ErrDimensionMismatch, len(embedding), s.dimension))
	}

	// Round-trip through JSON so the stored payload matches what an external
	// store would hand back on search.
	data, err := json.Marshal(payload)
	if err != nil {
		return "", core.NewStoreError("memory insert", fmt.Errorf("marshal payload: %w", err))
	}
	var stored map[string]any
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", core.NewStoreError("memory insert", fmt.Errorf("payload must be a JSON object: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists {
		return "", core.NewStoreError("memory insert", core.ErrCollectionNotFound)
	}

	id := uuid.NewString()
	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	s.points[id] = memoryPoint{id: id, embedding: vec, payload: stored}
	return id, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Count returns the number of points in the store.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

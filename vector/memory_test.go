package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/nutrilog/foodvision/core"
)

func TestMemoryStore_SearchAbsentCollection(t *testing.T) {
	s := NewMemoryStore(3)

	results, err := s.Search(context.Background(), []float64{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("absent collection must not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
}

func TestMemoryStore_InsertAbsentCollection(t *testing.T) {
	s := NewMemoryStore(3)

	_, err := s.Insert(context.Background(), []float64{1, 0, 0}, map[string]any{"k": "v"})
	if !errors.Is(err, core.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestMemoryStore_InsertDimensionMismatch(t *testing.T) {
	s := NewMemoryStore(3)
	if err := s.EnsureCollection(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := s.Insert(context.Background(), []float64{1, 0}, map[string]any{"k": "v"})
	if !errors.Is(err, core.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	var storeErr *core.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %T", err)
	}
}

func TestMemoryStore_SearchOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	if err := s.EnsureCollection(ctx); err != nil {
		t.Fatal(err)
	}

	vectors := [][]float64{
		{1, 0},
		{0.9, 0.43588989435406733}, // ~0.9 similarity to [1,0]
		{0, 1},                     // orthogonal
	}
	for i, v := range vectors {
		if _, err := s.Insert(ctx, v, map[string]any{"idx": i}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	results, err := s.Search(ctx, []float64{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not ordered by descending score: %f < %f", results[0].Score, results[1].Score)
	}
	if results[0].Score < 0.99 {
		t.Errorf("identical vector should score ~1.0, got %f", results[0].Score)
	}
}

func TestMemoryStore_DeleteCollectionClearsPoints(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	if err := s.EnsureCollection(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(ctx, []float64{1, 0}, map[string]any{}); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 1 {
		t.Fatalf("expected 1 point, got %d", s.Count())
	}

	if err := s.DeleteCollection(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 0 {
		t.Errorf("expected 0 points after delete, got %d", s.Count())
	}

	results, err := s.Search(ctx, []float64{1, 0}, 5)
	if err != nil {
		t.Fatalf("search after delete must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results after delete, got %d", len(results))
	}
}

func TestMemoryStore_PayloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	if err := s.EnsureCollection(ctx); err != nil {
		t.Fatal(err)
	}

	type payload struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	id, err := s.Insert(ctx, []float64{1, 0}, payload{Label: "sushi", Score: 0.9})
	if err != nil {
		t.Fatal(err)
	}

	results, err := s.Search(ctx, []float64{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != id {
		t.Fatalf("expected the inserted point, got %+v", results)
	}
	if results[0].Payload["label"] != "sushi" {
		t.Errorf("payload not preserved: %+v", results[0].Payload)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"length mismatch", []float64{1, 0}, []float64{1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float64{3, 4})
	if v[0] != 0.6 || v[1] != 0.8 {
		t.Errorf("Normalize([3,4]) = %v, want [0.6, 0.8]", v)
	}

	zero := Normalize([]float64{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector must stay zero, got %v", zero)
	}
}

package vector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nutrilog/foodvision/core"
)

func newQdrantTestStore(t *testing.T, handler http.HandlerFunc) *QdrantStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewQdrantStore(QdrantConfig{
		URL:        srv.URL,
		APIKey:     "test-key",
		Collection: "food_vectors",
		Dimension:  3,
	})
}

func TestQdrantStore_SearchMissingCollection(t *testing.T) {
	s := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"Not found"}}`, http.StatusNotFound)
	})

	results, err := s.Search(context.Background(), []float64{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("missing collection must not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
}

func TestQdrantStore_SearchParsesResults(t *testing.T) {
	var gotBody map[string]any
	s := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/food_vectors/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "test-key" {
			t.Errorf("missing api-key header")
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"id": "p1", "score": 0.97, "payload": map[string]any{"source": "google_vertex_ai"}},
				{"id": "p2", "score": 0.71, "payload": map[string]any{}},
			},
		})
	})

	results, err := s.Search(context.Background(), []float64{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "p1" || results[0].Score != 0.97 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[0].Payload["source"] != "google_vertex_ai" {
		t.Errorf("payload not decoded: %+v", results[0].Payload)
	}

	if gotBody["with_payload"] != true {
		t.Error("search must request payloads")
	}
	if gotBody["with_vector"] != false {
		t.Error("search must not request raw vectors")
	}
	if gotBody["limit"] != float64(10) {
		t.Errorf("expected limit 10, got %v", gotBody["limit"])
	}
}

func TestQdrantStore_InsertSendsPoint(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	var gotBody struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float64      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	s := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"status":"ok"}`))
	})

	id, err := s.Insert(context.Background(), []float64{1, 0, 0}, map[string]any{"source": "test"})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected an assigned ID")
	}

	if gotMethod != http.MethodPut {
		t.Errorf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/collections/food_vectors/points" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotQuery != "wait=true" {
		t.Errorf("expected wait=true, got %q", gotQuery)
	}
	if len(gotBody.Points) != 1 || gotBody.Points[0].ID != id {
		t.Errorf("point not sent under assigned ID: %+v", gotBody.Points)
	}
}

func TestQdrantStore_InsertDimensionMismatch(t *testing.T) {
	called := false
	s := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := s.Insert(context.Background(), []float64{1, 0}, map[string]any{})
	if !errors.Is(err, core.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if called {
		t.Error("mismatched insert must not reach the store")
	}
}

func TestQdrantStore_InsertFailurePropagates(t *testing.T) {
	s := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"wrong vector size"}}`, http.StatusBadRequest)
	})

	_, err := s.Insert(context.Background(), []float64{1, 0, 0}, map[string]any{})
	var storeErr *core.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestQdrantStore_EnsureCollectionCreatesWhenAbsent(t *testing.T) {
	var createCalled bool
	s := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.Error(w, "not found", http.StatusNotFound)
		case http.MethodPut:
			createCalled = true
			var body struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if body.Vectors.Size != 3 || body.Vectors.Distance != "Cosine" {
				t.Errorf("unexpected collection config: %+v", body.Vectors)
			}
			w.Write([]byte(`{"result":true}`))
		}
	})

	if err := s.EnsureCollection(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !createCalled {
		t.Error("expected collection creation")
	}
}

func TestQdrantStore_EnsureCollectionIdempotent(t *testing.T) {
	var createCalled bool
	s := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"result":{"status":"green"}}`))
		case http.MethodPut:
			createCalled = true
		}
	})

	if err := s.EnsureCollection(context.Background()); err != nil {
		t.Fatal(err)
	}
	if createCalled {
		t.Error("existing collection must not be recreated")
	}
}

func TestQdrantStore_DeleteCollection(t *testing.T) {
	var gotMethod string
	s := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Write([]byte(`{"result":true}`))
	})

	if err := s.DeleteCollection(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("expected DELETE, got %s", gotMethod)
	}
}

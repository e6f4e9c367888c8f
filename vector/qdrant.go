package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nutrilog/foodvision/core"
)

// QdrantConfig configures the Qdrant REST client.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

// QdrantStore is a REST client to a Qdrant collection with cosine distance.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

// NewQdrantStore creates a Qdrant-backed store. It does not touch the
// network; call EnsureCollection before serving.
func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantStore{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection checks for the collection and creates it when absent.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return core.NewStoreError("qdrant ensure collection", err)
	}
	if exists {
		return nil
	}
	return s.CreateCollection(ctx)
}

// CreateCollection creates the collection with the configured dimension and
// cosine distance. Qdrant treats re-creating an identical collection as OK.
func (s *QdrantStore) CreateCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL(), body, nil); err != nil {
		return core.NewStoreError("qdrant create collection", err)
	}
	return nil
}

// DeleteCollection drops the collection and every point in it.
func (s *QdrantStore) DeleteCollection(ctx context.Context) error {
	if err := s.do(ctx, http.MethodDelete, s.collectionURL(), nil, nil); err != nil {
		return core.NewStoreError("qdrant delete collection", err)
	}
	return nil
}

// Search returns the limit nearest neighbors with payloads but without raw
// vectors. A missing collection is treated as no matches.
func (s *QdrantStore) Search(ctx context.Context, embedding []float64, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	reqBody := map[string]any{
		"vector":       embedding,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}

	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", reqBody, &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, core.NewStoreError("qdrant search", err)
	}

	results := make([]SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, SearchResult{ID: r.ID, Score: r.Score, Payload: r.Payload})
	}
	return results, nil
}

// Insert stores one point under a new UUID and waits for it to be indexed.
func (s *QdrantStore) Insert(ctx context.Context, embedding []float64, payload any) (string, error) {
	if len(embedding) != s.dimension {
		return "", core.NewStoreError("qdrant insert",
			fmt.Errorf("%w: got %d, collection expects %d", core.ErrDimensionMismatch, len(embedding), s.dimension))
	}

	id := uuid.NewString()
	reqBody := map[string]any{
		"points": []map[string]any{
			{
				"id":      id,
				"vector":  embedding,
				"payload": payload,
			},
		},
	}

	if err := s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", reqBody, nil); err != nil {
		return "", core.NewStoreError("qdrant insert", err)
	}
	return id, nil
}

// Close is a no-op; the underlying http.Client needs no shutdown.
func (s *QdrantStore) Close() error {
	return nil
}

func (s *QdrantStore) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection)
}

func (s *QdrantStore) collectionExists(ctx context.Context) (bool, error) {
	err := s.do(ctx, http.MethodGet, s.collectionURL(), nil, nil)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// httpStatusError carries a non-2xx Qdrant response.
type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

func isNotFound(err error) bool {
	var se *httpStatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

func (s *QdrantStore) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpStatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

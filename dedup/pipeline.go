// Package dedup orchestrates the food image deduplication pipeline: embed,
// search for a near-duplicate, and only classify and store novel images.
package dedup

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nutrilog/foodvision/core"
	"github.com/nutrilog/foodvision/monitor"
	"github.com/nutrilog/foodvision/vector"
	"github.com/nutrilog/foodvision/vision"
)

// Match is a stored food point matched by similarity search.
type Match struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Result is the outcome of one Detect call.
type Result struct {
	Status         string // "existing" or "new"
	Message        string
	Existing       *Match          // set when Status == "existing"
	PointID        string          // ID of the inserted point when Status == "new"
	Classification json.RawMessage // set when Status == "new"
	Similar        []Match         // near-but-not-duplicate matches, new case only
}

// Config holds the pipeline thresholds. Zero values fall back to the
// deployment defaults (0.85 duplicate, 0.70 similar, 10 results).
type Config struct {
	DuplicateThreshold float64
	SimilarThreshold   float64
	SimilarLimit       int
}

// Pipeline runs the deduplication state machine over a provider and a vector
// store. It keeps no state between requests.
type Pipeline struct {
	provider vision.Client
	store    vector.Store
	cfg      Config
	metrics  monitor.Collector
}

// New creates a Pipeline. Both collaborators are required.
func New(provider vision.Client, store vector.Store, cfg Config) *Pipeline {
	if cfg.DuplicateThreshold == 0 {
		cfg.DuplicateThreshold = 0.85
	}
	if cfg.SimilarThreshold == 0 {
		cfg.SimilarThreshold = 0.70
	}
	if cfg.SimilarLimit == 0 {
		cfg.SimilarLimit = 10
	}
	return &Pipeline{provider: provider, store: store, cfg: cfg, metrics: monitor.NewNoOpCollector()}
}

// WithMetrics installs a stage latency collector and returns the pipeline.
func (p *Pipeline) WithMetrics(c monitor.Collector) *Pipeline {
	if c != nil {
		p.metrics = c
	}
	return p
}

func (p *Pipeline) record(stage string, start time.Time, err error) {
	m := monitor.StageMetrics{
		Stage:    stage,
		Duration: time.Since(start),
		Success:  err == nil,
	}
	if err != nil {
		m.Error = err.Error()
	}
	p.metrics.Record(m)
}

func (p *Pipeline) embed(ctx context.Context, image []byte) ([]float64, error) {
	start := time.Now()
	embedding, err := p.provider.Embed(ctx, image)
	p.record(monitor.StageEmbed, start, err)
	return embedding, err
}

func (p *Pipeline) search(ctx context.Context, embedding []float64, limit int) ([]vector.SearchResult, error) {
	start := time.Now()
	results, err := p.store.Search(ctx, embedding, limit)
	p.record(monitor.StageSearch, start, err)
	return results, err
}

func (p *Pipeline) classify(ctx context.Context, image []byte, contentType string) (json.RawMessage, error) {
	start := time.Now()
	raw, err := p.provider.Classify(ctx, image, contentType)
	p.record(monitor.StageClassify, start, err)
	return raw, err
}

func (p *Pipeline) insert(ctx context.Context, embedding []float64, payload any) (string, error) {
	start := time.Now()
	id, err := p.store.Insert(ctx, embedding, payload)
	p.record(monitor.StageInsert, start, err)
	return id, err
}

// FindNearDuplicate embeds the image and returns the best stored match if its
// similarity reaches the duplicate threshold (inclusive), else nil.
func (p *Pipeline) FindNearDuplicate(ctx context.Context, image []byte) (*Match, error) {
	embedding, err := p.embed(ctx, image)
	if err != nil {
		return nil, err
	}

	results, err := p.search(ctx, embedding, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0].Score < p.cfg.DuplicateThreshold {
		return nil, nil
	}

	top := results[0]
	return &Match{ID: top.ID, Score: top.Score, Payload: NormalizePayload(top.Payload)}, nil
}

// SearchSimilar embeds the image and returns stored matches at or above the
// similar threshold.
func (p *Pipeline) SearchSimilar(ctx context.Context, image []byte) ([]Match, error) {
	embedding, err := p.embed(ctx, image)
	if err != nil {
		return nil, err
	}
	return p.searchSimilarVector(ctx, embedding, "")
}

func (p *Pipeline) searchSimilarVector(ctx context.Context, embedding []float64, excludeID string) ([]Match, error) {
	results, err := p.search(ctx, embedding, p.cfg.SimilarLimit)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		if r.Score < p.cfg.SimilarThreshold {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		matches = append(matches, Match{ID: r.ID, Score: r.Score, Payload: NormalizePayload(r.Payload)})
	}
	return matches, nil
}

// Detect runs the full pipeline for one uploaded image:
// duplicate check, then classify + embed + store + similarity search for
// novel images. Provider and insert failures abort the request; the
// post-insert similarity search is informational and must not unwind a
// completed insert, so its failure only empties the similar list.
func (p *Pipeline) Detect(ctx context.Context, image []byte, contentType string) (*Result, error) {
	if len(image) == 0 {
		return nil, core.NewValidationError("empty image payload")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	existing, err := p.FindNearDuplicate(ctx, image)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Result{
			Status:   "existing",
			Message:  "Similar food found in database",
			Existing: existing,
		}, nil
	}

	classification, err := p.classify(ctx, image, contentType)
	if err != nil {
		return nil, err
	}

	embedding, err := p.embed(ctx, image)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payload := FoodPayload{
		AnalysisResult: AnalysisResult{
			Classification: classification,
			ContentType:    contentType,
			AnalyzedAt:     now,
		},
		ConfidenceThreshold: p.cfg.DuplicateThreshold,
		CreatedAt:           now,
		Source:              p.provider.Name(),
	}

	id, err := p.insert(ctx, embedding, payload)
	if err != nil {
		return nil, err
	}

	similar, err := p.searchSimilarVector(ctx, embedding, id)
	if err != nil {
		log.Printf("[dedup] similar search after insert failed: %v", err)
		similar = nil
	}

	return &Result{
		Status:         "new",
		Message:        "Food analyzed and stored successfully",
		PointID:        id,
		Classification: classification,
		Similar:        similar,
	}, nil
}

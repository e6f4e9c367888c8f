// Package server exposes the deduplication pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/nutrilog/foodvision/dedup"
	"github.com/nutrilog/foodvision/monitor"
	"github.com/nutrilog/foodvision/server/store"
	"github.com/nutrilog/foodvision/vector"
	"github.com/nutrilog/foodvision/vision"
)

// Config configures a new Server instance.
type Config struct {
	Provider    vision.Client
	VectorStore vector.Store
	Collection  string // collection name reported by the admin reset endpoint
	Dedup       dedup.Config
	DatabaseDSN string // detection log location (sqlite path)

	// DetectionStore overrides the DSN-based detection store. Used in tests.
	DetectionStore store.DetectionStore
}

// Server is the HTTP server for the food detection API.
type Server struct {
	pipeline   *dedup.Pipeline
	vectors    vector.Store
	detections store.DetectionStore
	metrics    *monitor.InMemoryCollector
	collection string
}

// New creates a new Server with the given configuration. The vector store
// collection is created best-effort: an unreachable store at boot is logged,
// not fatal, and searches tolerate the absent collection until it appears.
func New(cfg Config) (*Server, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("server: provider is required")
	}
	if cfg.VectorStore == nil {
		return nil, fmt.Errorf("server: vector store is required")
	}

	detections := cfg.DetectionStore
	if detections == nil {
		var err error
		detections, err = store.NewStore(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("initialize detection store: %w", err)
		}
		log.Printf("[store] Initialized detection log")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := cfg.VectorStore.EnsureCollection(ctx); err != nil {
		log.Printf("[vector] Failed to ensure collection: %v", err)
	}

	metrics := monitor.NewInMemoryCollector()
	return &Server{
		pipeline:   dedup.New(cfg.Provider, cfg.VectorStore, cfg.Dedup).WithMetrics(metrics),
		vectors:    cfg.VectorStore,
		detections: detections,
		metrics:    metrics,
		collection: cfg.Collection,
	}, nil
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	var errs []error
	if err := s.detections.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.vectors.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("close stores: %v", errs)
	}
	return nil
}

// Handler returns an http.Handler for the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/food/detect", s.handleDetect)
	mux.HandleFunc("POST /api/admin/reset", s.handleReset)
	mux.HandleFunc("GET /api/detections", s.handleDetectionList)
	mux.HandleFunc("GET /api/detections/summary", s.handleDetectionSummary)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Package store persists detection events so operators can audit what the
// deduplication pipeline decided for each upload.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entity is not found
var ErrNotFound = errors.New("not found")

// DetectionInfo records the outcome of one detect request.
type DetectionInfo struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"` // existing, new, error
	SimilarityScore float64 `json:"similarity_score"`
	PointID         string  `json:"point_id,omitempty"`
	ContentType     string  `json:"content_type"`
	ElapsedMs       int64   `json:"elapsed_ms"`
	Timestamp       int64   `json:"timestamp"` // unix millis
}

// DetectionSummary contains aggregated detection metrics.
type DetectionSummary struct {
	TotalDetections int     `json:"total_detections"`
	Existing        int     `json:"existing"`
	New             int     `json:"new"`
	Errors          int     `json:"errors"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
}

// DetectionStore defines the interface for detection event persistence.
type DetectionStore interface {
	Add(ctx context.Context, d DetectionInfo) error
	List(ctx context.Context, limit int) ([]DetectionInfo, error)
	Summary(ctx context.Context) (DetectionSummary, error)
	Close() error
}

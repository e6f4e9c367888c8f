package monitor

import "time"

// Stage names recorded by the detection pipeline.
const (
	StageEmbed    = "embed"
	StageSearch   = "search"
	StageClassify = "classify"
	StageInsert   = "insert"
)

// StageMetrics is a single timed pipeline stage.
type StageMetrics struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// StageStats aggregates all recordings for one stage.
type StageStats struct {
	Count        int64   `json:"count"`
	Failures     int64   `json:"failures"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	MaxLatencyMs float64 `json:"max_latency_ms"`
}

// Stats is a point-in-time snapshot of per-stage aggregates.
type Stats struct {
	Stages map[string]StageStats `json:"stages"`
	Since  time.Time             `json:"since"`
}

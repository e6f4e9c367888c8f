package dedup

import (
	"encoding/json"
	"time"
)

// AnalysisResult is the classification half of a stored food point.
// Classification holds the provider's response as native JSON.
type AnalysisResult struct {
	Classification json.RawMessage `json:"classification"`
	ContentType    string          `json:"contentType"`
	AnalyzedAt     time.Time       `json:"analyzedAt"`
}

// FoodPayload is the payload stored with every food vector point. Points are
// written once and never mutated; new fields must be optional so older points
// still decode.
type FoodPayload struct {
	AnalysisResult      AnalysisResult `json:"analysisResult"`
	ConfidenceThreshold float64        `json:"confidenceThreshold"`
	CreatedAt           time.Time      `json:"createdAt"`
	Source              string         `json:"source"`
}

// NormalizePayload re-parses a string-encoded classification field into
// structured JSON. Older points stored the classification double-serialized;
// this is best-effort, leaving the value untouched when parsing fails.
func NormalizePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}

	analysis, ok := payload["analysisResult"].(map[string]any)
	if !ok {
		return payload
	}

	raw, ok := analysis["classification"].(string)
	if !ok || raw == "" {
		return payload
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		analysis["classification"] = parsed
	}
	return payload
}

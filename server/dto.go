package server

import (
	"encoding/json"

	"github.com/nutrilog/foodvision/server/store"
)

// Response field names follow the public API contract of the food detection
// endpoint, hence the PascalCase JSON keys.

type ExistingData struct {
	ID      string         `json:"Id"`
	Score   float64        `json:"Score"`
	Payload map[string]any `json:"Payload"`
}

type ExistingFoodResponse struct {
	Status          string       `json:"Status"`
	Message         string       `json:"Message"`
	SimilarityScore float64      `json:"SimilarityScore"`
	ExistingData    ExistingData `json:"ExistingData"`
}

type VertexAIResult struct {
	Classification     json.RawMessage `json:"Classification"`
	EmbeddingGenerated bool            `json:"EmbeddingGenerated"`
}

type SimilarFood struct {
	ID              string         `json:"Id"`
	SimilarityScore float64        `json:"SimilarityScore"`
	Payload         map[string]any `json:"Payload"`
}

type NewFoodResponse struct {
	Status       string         `json:"Status"`
	Message      string         `json:"Message"`
	VertexAI     VertexAIResult `json:"VertexAI"`
	SimilarFoods []SimilarFood  `json:"SimilarFoods"`
}

type ResetResponse struct {
	Message    string `json:"Message"`
	Collection string `json:"Collection"`
}

type DetectionListResponse struct {
	Detections []store.DetectionInfo `json:"detections"`
}

// Package foodvision deduplicates food images by embedding similarity. An
// uploaded image is embedded, searched against a vector collection for a
// near-duplicate, and only classified and stored when it is novel.
//
// Example usage:
//
//	provider, err := vision.NewVertexClient(vision.Config{
//	    ProjectID:          "my-project",
//	    ServiceAccountJSON: saJSON,
//	})
//	store := vector.NewMemoryStore(1408)
//	pipeline := dedup.New(provider, store, dedup.Config{})
//	result, err := pipeline.Detect(ctx, imageBytes, "image/jpeg")
package foodvision

import (
	"github.com/nutrilog/foodvision/config"
	"github.com/nutrilog/foodvision/dedup"
	"github.com/nutrilog/foodvision/server"
	"github.com/nutrilog/foodvision/vector"
	"github.com/nutrilog/foodvision/vision"
)

// Pipeline aliases
type (
	Pipeline       = dedup.Pipeline
	PipelineConfig = dedup.Config
	DetectResult   = dedup.Result
	FoodPayload    = dedup.FoodPayload
)

// NewPipeline creates a deduplication pipeline over a provider and a store.
func NewPipeline(provider vision.Client, store vector.Store, cfg PipelineConfig) *Pipeline {
	return dedup.New(provider, store, cfg)
}

// Provider aliases
type (
	VisionClient = vision.Client
	VertexClient = vision.VertexClient
	VertexConfig = vision.Config
)

// NewVertexClient creates a Vertex AI provider client.
func NewVertexClient(cfg VertexConfig) (*VertexClient, error) {
	return vision.NewVertexClient(cfg)
}

// Vector store aliases
type (
	VectorStore        = vector.Store
	VectorSearchResult = vector.SearchResult
)

// NewMemoryVectorStore creates an in-memory vector store for the given dimension.
func NewMemoryVectorStore(dimension int) *vector.MemoryStore {
	return vector.NewMemoryStore(dimension)
}

// NewVectorStore creates the configured vector store backend.
func NewVectorStore(cfg config.VectorStoreConfig) (vector.Store, error) {
	return vector.NewStore(cfg)
}

// Server aliases
type (
	Server       = server.Server
	ServerConfig = server.Config
)

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	return server.New(cfg)
}

// Config aliases
type Config = config.Config

// LoadConfig loads configuration from a YAML file with env overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Package config loads explicit application configuration from YAML with
// environment variable overrides. Components receive config structs through
// their constructors; nothing reads the environment at call time.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP server and its detection log.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	DatabaseDSN string `yaml:"database_dsn"` // sqlite path for the detection log
}

// VertexConfig contains connection details for the Vertex AI provider.
type VertexConfig struct {
	BaseURL            string `yaml:"base_url"`
	ProjectID          string `yaml:"project_id"`
	Location           string `yaml:"location"`
	Model              string `yaml:"model"`
	EmbedModel         string `yaml:"embed_model"`
	ServiceAccountB64  string `yaml:"service_account"` // base64-encoded service account JSON
	ServiceAccountFile string `yaml:"service_account_file"`
	TimeoutSecs        int    `yaml:"timeout_secs"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// PgVectorConfig contains connection details for a pgvector-backed store.
type PgVectorConfig struct {
	DSN string `yaml:"dsn"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Type       string          `yaml:"type"` // qdrant, pgvector, memory
	Collection string          `yaml:"collection"`
	Dimension  int             `yaml:"dimension"`
	Qdrant     *QdrantConfig   `yaml:"qdrant,omitempty"`
	PgVector   *PgVectorConfig `yaml:"pgvector,omitempty"`
}

// DedupConfig holds the similarity thresholds for the deduplication pipeline.
type DedupConfig struct {
	DuplicateThreshold float64 `yaml:"duplicate_threshold"`
	SimilarThreshold   float64 `yaml:"similar_threshold"`
	SimilarLimit       int     `yaml:"similar_limit"`
}

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Vertex      VertexConfig      `yaml:"vertex"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Dedup       DedupConfig       `yaml:"dedup"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8000",
			DatabaseDSN: "data/foodvision.db",
		},
		Vertex: VertexConfig{
			BaseURL:     "https://us-central1-aiplatform.googleapis.com",
			Location:    "us-central1",
			Model:       "gemini-1.5-flash",
			EmbedModel:  "multimodalembedding@001",
			TimeoutSecs: 60,
		},
		VectorStore: VectorStoreConfig{
			Type:       "memory",
			Collection: "food_vectors",
			Dimension:  1408,
		},
		Dedup: DedupConfig{
			DuplicateThreshold: 0.85,
			SimilarThreshold:   0.70,
			SimilarLimit:       10,
		},
	}
}

// Load reads configuration from path, falling back to defaults if the file
// does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.DatabaseDSN == "" {
		cfg.Server.DatabaseDSN = def.Server.DatabaseDSN
	}
	if cfg.Vertex.BaseURL == "" {
		cfg.Vertex.BaseURL = def.Vertex.BaseURL
	}
	if cfg.Vertex.Location == "" {
		cfg.Vertex.Location = def.Vertex.Location
	}
	if cfg.Vertex.Model == "" {
		cfg.Vertex.Model = def.Vertex.Model
	}
	if cfg.Vertex.EmbedModel == "" {
		cfg.Vertex.EmbedModel = def.Vertex.EmbedModel
	}
	if cfg.Vertex.TimeoutSecs == 0 {
		cfg.Vertex.TimeoutSecs = def.Vertex.TimeoutSecs
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = def.VectorStore.Type
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = def.VectorStore.Collection
	}
	if cfg.VectorStore.Dimension == 0 {
		cfg.VectorStore.Dimension = def.VectorStore.Dimension
	}
	if cfg.Dedup.DuplicateThreshold == 0 {
		cfg.Dedup.DuplicateThreshold = def.Dedup.DuplicateThreshold
	}
	if cfg.Dedup.SimilarThreshold == 0 {
		cfg.Dedup.SimilarThreshold = def.Dedup.SimilarThreshold
	}
	if cfg.Dedup.SimilarLimit == 0 {
		cfg.Dedup.SimilarLimit = def.Dedup.SimilarLimit
	}
}

// applyEnv maps the deployment environment onto the config. Environment
// variables win over file values.
func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "ADDR")
	setString(&cfg.Server.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.Vertex.BaseURL, "VERTEXAI_BASE_URL")
	setString(&cfg.Vertex.ProjectID, "VERTEXAI_PROJECT_ID")
	setString(&cfg.Vertex.Model, "VERTEXAI_MODEL_NAME")
	setString(&cfg.Vertex.ServiceAccountB64, "VERTEXAI_SERVICE_ACCOUNT")
	if qdrantURL := os.Getenv("QDRANT_URL"); qdrantURL != "" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		cfg.VectorStore.Type = "qdrant"
		cfg.VectorStore.Qdrant.URL = qdrantURL
		setString(&cfg.VectorStore.Qdrant.APIKey, "QDRANT_API_KEY")
	}
	if v := os.Getenv("VECTOR_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.VectorStore.Dimension = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that the loaded configuration is usable for serving.
func (c *Config) Validate() error {
	if c.VectorStore.Dimension <= 0 {
		return fmt.Errorf("vector_store.dimension must be positive, got %d", c.VectorStore.Dimension)
	}
	if c.Dedup.DuplicateThreshold < c.Dedup.SimilarThreshold {
		return fmt.Errorf("dedup.duplicate_threshold (%g) must be >= dedup.similar_threshold (%g)",
			c.Dedup.DuplicateThreshold, c.Dedup.SimilarThreshold)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			return fmt.Errorf("vector_store.qdrant.url is required for the qdrant backend")
		}
	case "pgvector":
		if c.VectorStore.PgVector == nil || c.VectorStore.PgVector.DSN == "" {
			return fmt.Errorf("vector_store.pgvector.dsn is required for the pgvector backend")
		}
	default:
		return fmt.Errorf("unknown vector_store.type %q", c.VectorStore.Type)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.VectorStore.Collection != "food_vectors" {
		t.Errorf("expected collection food_vectors, got %q", cfg.VectorStore.Collection)
	}
	if cfg.VectorStore.Dimension != 1408 {
		t.Errorf("expected dimension 1408, got %d", cfg.VectorStore.Dimension)
	}
	if cfg.Dedup.DuplicateThreshold != 0.85 {
		t.Errorf("expected duplicate threshold 0.85, got %f", cfg.Dedup.DuplicateThreshold)
	}
	if cfg.Dedup.SimilarThreshold != 0.70 {
		t.Errorf("expected similar threshold 0.70, got %f", cfg.Dedup.SimilarThreshold)
	}
	if cfg.Dedup.SimilarLimit != 10 {
		t.Errorf("expected similar limit 10, got %d", cfg.Dedup.SimilarLimit)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected defaults for non-existent file, got %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
server:
  addr: ":9090"
vector_store:
  type: qdrant
  dimension: 512
  qdrant:
    url: http://qdrant:6333
    api_key: secret
dedup:
  duplicate_threshold: 0.9
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %q", cfg.Server.Addr)
	}
	if cfg.VectorStore.Type != "qdrant" {
		t.Errorf("expected type qdrant, got %q", cfg.VectorStore.Type)
	}
	if cfg.VectorStore.Dimension != 512 {
		t.Errorf("expected dimension 512, got %d", cfg.VectorStore.Dimension)
	}
	if cfg.Dedup.DuplicateThreshold != 0.9 {
		t.Errorf("expected duplicate threshold 0.9, got %f", cfg.Dedup.DuplicateThreshold)
	}
	// Unset values fall back to defaults.
	if cfg.Dedup.SimilarThreshold != 0.70 {
		t.Errorf("expected default similar threshold, got %f", cfg.Dedup.SimilarThreshold)
	}
	if cfg.VectorStore.Collection != "food_vectors" {
		t.Errorf("expected default collection, got %q", cfg.VectorStore.Collection)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://env-qdrant:6333")
	t.Setenv("QDRANT_API_KEY", "env-key")
	t.Setenv("VERTEXAI_PROJECT_ID", "env-project")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.VectorStore.Type != "qdrant" {
		t.Errorf("QDRANT_URL should select the qdrant backend, got %q", cfg.VectorStore.Type)
	}
	if cfg.VectorStore.Qdrant == nil || cfg.VectorStore.Qdrant.URL != "http://env-qdrant:6333" {
		t.Errorf("qdrant URL not applied: %+v", cfg.VectorStore.Qdrant)
	}
	if cfg.VectorStore.Qdrant.APIKey != "env-key" {
		t.Errorf("qdrant API key not applied: %q", cfg.VectorStore.Qdrant.APIKey)
	}
	if cfg.Vertex.ProjectID != "env-project" {
		t.Errorf("project ID not applied: %q", cfg.Vertex.ProjectID)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"qdrant without url", func(c *Config) {
			c.VectorStore.Type = "qdrant"
		}, true},
		{"pgvector without dsn", func(c *Config) {
			c.VectorStore.Type = "pgvector"
		}, true},
		{"unknown backend", func(c *Config) {
			c.VectorStore.Type = "weaviate"
		}, true},
		{"thresholds inverted", func(c *Config) {
			c.Dedup.DuplicateThreshold = 0.5
			c.Dedup.SimilarThreshold = 0.8
		}, true},
		{"qdrant configured", func(c *Config) {
			c.VectorStore.Type = "qdrant"
			c.VectorStore.Qdrant = &QdrantConfig{URL: "http://localhost:6333"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

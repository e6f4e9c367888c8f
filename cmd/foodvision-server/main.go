package main

import (
	"encoding/base64"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/nutrilog/foodvision/config"
	"github.com/nutrilog/foodvision/dedup"
	"github.com/nutrilog/foodvision/server"
	"github.com/nutrilog/foodvision/vector"
	"github.com/nutrilog/foodvision/vision"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config YAML")
	flag.Parse()

	// Optional .env for local development; env vars override the YAML file.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	saJSON, err := loadServiceAccount(cfg.Vertex)
	if err != nil {
		log.Fatalf("load service account: %v", err)
	}

	provider, err := vision.NewVertexClient(vision.Config{
		BaseURL:            cfg.Vertex.BaseURL,
		ProjectID:          cfg.Vertex.ProjectID,
		Location:           cfg.Vertex.Location,
		Model:              cfg.Vertex.Model,
		EmbedModel:         cfg.Vertex.EmbedModel,
		ServiceAccountJSON: saJSON,
		Timeout:            cfg.Vertex.TimeoutSecs,
	})
	if err != nil {
		log.Fatalf("create vertex client: %v", err)
	}

	vectorStore, err := vector.NewStore(cfg.VectorStore)
	if err != nil {
		log.Fatalf("create vector store: %v", err)
	}
	log.Printf("[vector] Using %s store, collection %q (dimension %d)",
		cfg.VectorStore.Type, cfg.VectorStore.Collection, cfg.VectorStore.Dimension)

	srv, err := server.New(server.Config{
		Provider:    provider,
		VectorStore: vectorStore,
		Collection:  cfg.VectorStore.Collection,
		Dedup: dedup.Config{
			DuplicateThreshold: cfg.Dedup.DuplicateThreshold,
			SimilarThreshold:   cfg.Dedup.SimilarThreshold,
			SimilarLimit:       cfg.Dedup.SimilarLimit,
		},
		DatabaseDSN: cfg.Server.DatabaseDSN,
	})
	if err != nil {
		log.Fatalf("create server: %v", err)
	}
	defer srv.Close()

	log.Printf("Starting foodvision server on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, srv.Handler()))
}

// loadServiceAccount resolves the Vertex service account JSON from the
// base64-encoded config value or a file path.
func loadServiceAccount(cfg config.VertexConfig) ([]byte, error) {
	if cfg.ServiceAccountB64 != "" {
		return base64.StdEncoding.DecodeString(cfg.ServiceAccountB64)
	}
	if cfg.ServiceAccountFile != "" {
		return os.ReadFile(cfg.ServiceAccountFile)
	}
	return nil, nil
}

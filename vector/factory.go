package vector

import (
	"fmt"
	"time"

	"github.com/nutrilog/foodvision/config"
)

// NewStore builds the configured vector store backend.
// - memory: in-process brute-force store (development, tests)
// - qdrant: Qdrant REST API
// - pgvector: PostgreSQL with the pgvector extension
func NewStore(cfg config.VectorStoreConfig) (Store, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryStore(cfg.Dimension), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant store: missing qdrant configuration")
		}
		return NewQdrantStore(QdrantConfig{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Collection,
			Dimension:  cfg.Dimension,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case "pgvector":
		if cfg.PgVector == nil {
			return nil, fmt.Errorf("pgvector store: missing pgvector configuration")
		}
		return NewPgVectorStore(cfg.PgVector.DSN, cfg.Collection, cfg.Dimension)
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.Type)
	}
}

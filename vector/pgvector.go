package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nutrilog/foodvision/core"
)

const pgUndefinedTable = "42P01"

// PgVectorStore keeps points in a PostgreSQL table using the pgvector
// extension, one table per collection.
type PgVectorStore struct {
	db         *sql.DB
	collection string
	dimension  int
}

// NewPgVectorStore opens a pgvector-backed store for the named collection.
func NewPgVectorStore(dsn, collection string, dimension int) (*PgVectorStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PgVectorStore{db: db, collection: collection, dimension: dimension}, nil
}

// EnsureCollection creates the extension, table, and index if absent.
func (s *PgVectorStore) EnsureCollection(ctx context.Context) error {
	return s.CreateCollection(ctx)
}

// CreateCollection creates the collection table with a cosine HNSW index.
func (s *PgVectorStore) CreateCollection(ctx context.Context) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			embedding vector(%d),
			payload JSONB DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`, s.collection, s.dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s USING hnsw (embedding vector_cosine_ops)`,
			s.collection, s.collection),
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return core.NewStoreError("pgvector create collection", err)
		}
	}
	return nil
}

// DeleteCollection drops the collection table.
func (s *PgVectorStore) DeleteCollection(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.collection)); err != nil {
		return core.NewStoreError("pgvector delete collection", err)
	}
	return nil
}

// Search finds the nearest points by cosine distance. A missing table is
// treated as no matches.
func (s *PgVectorStore) Search(ctx context.Context, embedding []float64, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, payload, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, s.collection), formatEmbedding(embedding), limit)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, core.NewStoreError("pgvector search", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var payloadBytes []byte

		if err := rows.Scan(&r.ID, &payloadBytes, &r.Score); err != nil {
			return nil, core.NewStoreError("pgvector search", fmt.Errorf("scan row: %w", err))
		}
		if len(payloadBytes) > 0 {
			json.Unmarshal(payloadBytes, &r.Payload)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, core.NewStoreError("pgvector search", err)
	}
	return results, nil
}

// Insert stores one point under a new UUID.
func (s *PgVectorStore) Insert(ctx context.Context, embedding []float64, payload any) (string, error) {
	if len(embedding) != s.dimension {
		return "", core.NewStoreError("pgvector insert",
			fmt.Errorf("%w: got %d, collection expects %d", core.ErrDimensionMismatch, len(embedding), s.dimension))
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", core.NewStoreError("pgvector insert", fmt.Errorf("marshal payload: %w", err))
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, embedding, payload) VALUES ($1, $2, $3)
	`, s.collection), id, formatEmbedding(embedding), data)
	if err != nil {
		return "", core.NewStoreError("pgvector insert", err)
	}
	return id, nil
}

// Close closes the database connection.
func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

// formatEmbedding converts a float64 slice to pgvector format: "[0.1,0.2,0.3]"
func formatEmbedding(embedding []float64) string {
	if len(embedding) == 0 {
		return ""
	}

	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/nutrilog/foodvision/server/store/migrations"
)

// SQLiteDetectionStore implements DetectionStore using SQLite
type SQLiteDetectionStore struct {
	db *sql.DB
}

// NewSQLiteDetectionStore creates a SQLite-backed detection store
func NewSQLiteDetectionStore(dsn string) (*SQLiteDetectionStore, error) {
	if dsn == "" {
		dsn = "data/foodvision.db"
	}

	dir := filepath.Dir(dsn)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteDetectionStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	data, err := migrations.SQLite.ReadFile("sqlite/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	_, err = db.Exec(string(data))
	if err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

func (s *SQLiteDetectionStore) Add(ctx context.Context, d DetectionInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO detections (
			id, status, similarity_score, point_id, content_type, elapsed_ms, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Status, d.SimilarityScore, d.PointID, d.ContentType, d.ElapsedMs, d.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert detection: %w", err)
	}
	return nil
}

func (s *SQLiteDetectionStore) List(ctx context.Context, limit int) ([]DetectionInfo, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, similarity_score, point_id, content_type, elapsed_ms, timestamp
		FROM detections ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	var detections []DetectionInfo
	for rows.Next() {
		var d DetectionInfo
		if err := rows.Scan(
			&d.ID, &d.Status, &d.SimilarityScore, &d.PointID, &d.ContentType, &d.ElapsedMs, &d.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		detections = append(detections, d)
	}
	return detections, rows.Err()
}

func (s *SQLiteDetectionStore) Summary(ctx context.Context) (DetectionSummary, error) {
	var m DetectionSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'existing' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'new' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(elapsed_ms), 0)
		FROM detections`).Scan(
		&m.TotalDetections, &m.Existing, &m.New, &m.Errors, &m.AvgLatencyMs,
	)
	if err != nil {
		return m, fmt.Errorf("query summary: %w", err)
	}
	return m, nil
}

func (s *SQLiteDetectionStore) Close() error {
	return s.db.Close()
}

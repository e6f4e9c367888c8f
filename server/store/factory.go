package store

// NewStore creates a detection store based on the DSN.
// - Empty DSN: SQLite at data/foodvision.db
// - Anything else: SQLite at the specified path
func NewStore(dsn string) (DetectionStore, error) {
	return NewSQLiteDetectionStore(dsn)
}

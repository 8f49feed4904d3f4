package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		output_format TEXT NOT NULL,
		complexity TEXT,
		model TEXT,
		tools TEXT NOT NULL DEFAULT '',
		prompt_chars INTEGER NOT NULL,
		status TEXT NOT NULL,
		error_code TEXT,
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at);`,
}

// Migrate ensures the history tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}
	return nil
}

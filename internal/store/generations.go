package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Generation is one history row. Prompt text and replies are never stored.
type Generation struct {
	ID           int64
	RequestID    string
	Mode         string
	OutputFormat string
	Complexity   string
	Model        string
	Tools        []string
	PromptChars  int
	Status       string
	ErrorCode    string
	Duration     time.Duration
	CreatedAt    time.Time
}

// Generation statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RecordGeneration inserts g and returns its row id.
func (s *Store) RecordGeneration(ctx context.Context, g Generation) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}
	created := g.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO generations (
			request_id, mode, output_format, complexity, model, tools,
			prompt_chars, status, error_code, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		g.RequestID,
		g.Mode,
		g.OutputFormat,
		nullString(g.Complexity),
		nullString(g.Model),
		strings.Join(g.Tools, ","),
		g.PromptChars,
		g.Status,
		nullString(g.ErrorCode),
		g.Duration.Milliseconds(),
		created.UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("record generation: %w", err)
	}
	// Remote libsql connections may not report an insert id.
	id, _ := result.LastInsertId()
	return id, nil
}

// RecentGenerations returns up to limit rows, newest first.
func (s *Store) RecentGenerations(ctx context.Context, limit int) ([]Generation, error) {
	if s == nil || s.DB == nil {
		return nil, errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, request_id, mode, output_format, complexity, model, tools,
			prompt_chars, status, error_code, duration_ms, created_at
		FROM generations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var out []Generation
	for rows.Next() {
		var (
			g          Generation
			complexity sql.NullString
			model      sql.NullString
			tools      string
			errorCode  sql.NullString
			durationMS int64
			createdAt  int64
		)
		if err := rows.Scan(&g.ID, &g.RequestID, &g.Mode, &g.OutputFormat, &complexity, &model, &tools,
			&g.PromptChars, &g.Status, &errorCode, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		g.Complexity = complexity.String
		g.Model = model.String
		g.ErrorCode = errorCode.String
		if tools != "" {
			g.Tools = strings.Split(tools, ",")
		}
		g.Duration = time.Duration(durationMS) * time.Millisecond
		g.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	return out, nil
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	return sql.NullString{String: value, Valid: value != ""}
}

//go:build cgo

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/config"
)

func TestRecordAndListGenerations(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	defer s.Close() // nolint:errcheck
	require.Equal(t, "libsql", s.Driver())

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	_, err = s.RecordGeneration(ctx, Generation{
		RequestID:    "req-1",
		Mode:         "auto",
		OutputFormat: "text",
		Complexity:   "simple",
		Model:        "groq/compound",
		PromptChars:  12,
		Status:       StatusOK,
		Duration:     1500 * time.Millisecond,
		CreatedAt:    base,
	})
	require.NoError(t, err)
	_, err = s.RecordGeneration(ctx, Generation{
		RequestID:    "req-2",
		Mode:         "plan",
		OutputFormat: "powerpoint",
		Tools:        []string{"browser_search", "code_interpreter"},
		PromptChars:  40,
		Status:       StatusError,
		ErrorCode:    "AILINK_REPLY_INVALID",
		Duration:     time.Second,
		CreatedAt:    base.Add(time.Minute),
	})
	require.NoError(t, err)

	rows, err := s.RecentGenerations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "req-2", rows[0].RequestID)
	assert.Equal(t, []string{"browser_search", "code_interpreter"}, rows[0].Tools)
	assert.Equal(t, "AILINK_REPLY_INVALID", rows[0].ErrorCode)
	assert.Empty(t, rows[0].Model)

	assert.Equal(t, "req-1", rows[1].RequestID)
	assert.Equal(t, "simple", rows[1].Complexity)
	assert.Nil(t, rows[1].Tools)
	assert.Equal(t, 1500*time.Millisecond, rows[1].Duration)
	assert.True(t, base.Equal(rows[1].CreatedAt))

	limited, err := s.RecentGenerations(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

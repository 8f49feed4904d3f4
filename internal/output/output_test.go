package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/ailink/prompt"
	"github.com/promptdeck/promptdeck/internal/store"
)

func samplePrompts() []*prompt.Prompt {
	return []*prompt.Prompt{
		{Config: prompt.Config{Slug: "executor-powerpoint", Name: "Präsentation", ResponseFormat: "json_object"}, Source: "embedded:executor-powerpoint.md"},
		{Config: prompt.Config{Slug: "executor-text"}},
		nil,
	}
}

func sampleHistory() []store.Generation {
	created := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	return []store.Generation{
		{
			ID:           2,
			RequestID:    "req-2",
			Mode:         "auto",
			OutputFormat: "powerpoint",
			Complexity:   "complex",
			Model:        "groq/compound",
			Tools:        []string{"browser_search", "code_interpreter"},
			PromptChars:  42,
			Status:       store.StatusOK,
			Duration:     2500 * time.Millisecond,
			CreatedAt:    created,
		},
		{
			ID:           1,
			Mode:         "direct",
			OutputFormat: "text",
			Status:       store.StatusError,
			ErrorCode:    "PROVIDER_RATE_LIMITED",
			Duration:     120 * time.Millisecond,
			CreatedAt:    created.Add(-time.Minute),
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestFormatPrompts(t *testing.T) {
	tableRendered, err := NewFormatter(FormatTable).FormatPrompts(samplePrompts())
	require.NoError(t, err)
	require.Contains(t, tableRendered, "SLUG")
	require.Contains(t, tableRendered, "executor-powerpoint")
	require.Contains(t, tableRendered, "json")
	require.Contains(t, tableRendered, "2 prompts")

	jsonRendered, err := NewFormatter(FormatJSON).FormatPrompts(samplePrompts())
	require.NoError(t, err)
	require.Contains(t, jsonRendered, "\"slug\": \"executor-text\"")
	require.Contains(t, jsonRendered, "\"reply\": \"json\"")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatPrompts(samplePrompts())
	require.NoError(t, err)
	require.Contains(t, markdownRendered, "| Slug | Name | Reply | Source |")
	require.Contains(t, markdownRendered, "| executor-text | executor-text | text | - |")
}

func TestFormatHistory(t *testing.T) {
	tableRendered, err := NewFormatter(FormatTable).FormatHistory(sampleHistory())
	require.NoError(t, err)
	require.Contains(t, tableRendered, "browser_search, code_interpreter")
	require.Contains(t, tableRendered, "error (PROVIDER_RATE_LIMITED)")
	require.Contains(t, tableRendered, "2.5s")
	require.Contains(t, tableRendered, "120ms")
	require.Contains(t, tableRendered, "2 generations, 1 failed")

	jsonRendered, err := NewFormatter(FormatJSON).FormatHistory(sampleHistory())
	require.NoError(t, err)
	require.Contains(t, jsonRendered, "\"duration_ms\": 2500")
	require.Contains(t, jsonRendered, "\"tools\": []")
	require.Contains(t, jsonRendered, "\"created_at\": \"2026-03-15T10:00:00.000Z\"")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatHistory(sampleHistory())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(markdownRendered, "## Recent generations"))
	require.Contains(t, markdownRendered, "| direct | text | - | - | - |")
}

func TestFormatHistoryEmpty(t *testing.T) {
	rendered, err := NewFormatter(FormatJSON).FormatHistory(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", rendered)
}

func TestMarkdownEscaping(t *testing.T) {
	rendered, err := NewFormatter(FormatMarkdown).FormatPrompts([]*prompt.Prompt{
		{Config: prompt.Config{Slug: "a|b", Name: "pipe|name"}},
	})
	require.NoError(t, err)
	require.Contains(t, rendered, "a\\|b")
	require.Contains(t, rendered, "pipe\\|name")
}

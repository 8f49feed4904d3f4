package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/promptdeck/promptdeck/internal/ailink/prompt"
	"github.com/promptdeck/promptdeck/internal/store"
)

// TableFormatter renders listings as an ASCII table.
type TableFormatter struct{}

// FormatPrompts renders the prompt registry as a table.
func (f *TableFormatter) FormatPrompts(prompts []*prompt.Prompt) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Slug", "Name", "Reply", "Source"})

	for _, p := range prompts {
		if p == nil {
			continue
		}
		t.AppendRow(table.Row{p.Config.Slug, promptName(p), promptFormat(p), promptSource(p)})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d prompts", t.Length())})
	return t.Render(), nil
}

// FormatHistory renders generation history rows as a table.
func (f *TableFormatter) FormatHistory(rows []store.Generation) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Time", "Mode", "Format", "Complexity", "Model", "Tools", "Status", "Duration"})

	failed := 0
	for _, g := range rows {
		if g.Status == store.StatusError {
			failed++
		}
		t.AppendRow(table.Row{
			formatTime(g.CreatedAt),
			g.Mode,
			g.OutputFormat,
			orDash(g.Complexity),
			orDash(g.Model),
			toolsLabel(g.Tools),
			statusLabel(g),
			formatDuration(g.Duration),
		})
	}

	if len(rows) > 0 {
		summary := fmt.Sprintf("%d generations", len(rows))
		if failed > 0 {
			summary += fmt.Sprintf(", %d failed", failed)
		}
		t.AppendFooter(table.Row{"", "", "", "", "", "", summary, ""})
	}
	return t.Render(), nil
}

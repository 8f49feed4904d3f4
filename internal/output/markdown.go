package output

import (
	"fmt"
	"strings"

	"github.com/promptdeck/promptdeck/internal/ailink/prompt"
	"github.com/promptdeck/promptdeck/internal/store"
)

// MarkdownFormatter renders listings as markdown tables.
type MarkdownFormatter struct{}

// FormatPrompts renders the prompt registry as Markdown.
func (f *MarkdownFormatter) FormatPrompts(prompts []*prompt.Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Prompts\n\n")
	sb.WriteString("| Slug | Name | Reply | Source |\n")
	sb.WriteString("|------|------|-------|--------|\n")

	for _, p := range prompts {
		if p == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeMarkdownCell(p.Config.Slug),
			escapeMarkdownCell(promptName(p)),
			promptFormat(p),
			escapeMarkdownCell(promptSource(p)),
		))
	}
	return sb.String(), nil
}

// FormatHistory renders generation history rows as Markdown.
func (f *MarkdownFormatter) FormatHistory(rows []store.Generation) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Recent generations\n\n")
	sb.WriteString("| Time | Mode | Format | Complexity | Model | Tools | Status | Duration |\n")
	sb.WriteString("|------|------|--------|------------|-------|-------|--------|----------|\n")

	for _, g := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			formatTime(g.CreatedAt),
			escapeMarkdownCell(g.Mode),
			escapeMarkdownCell(g.OutputFormat),
			escapeMarkdownCell(orDash(g.Complexity)),
			escapeMarkdownCell(orDash(g.Model)),
			escapeMarkdownCell(toolsLabel(g.Tools)),
			escapeMarkdownCell(statusLabel(g)),
			formatDuration(g.Duration),
		))
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}

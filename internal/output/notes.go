package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/promptdeck/promptdeck/internal/ailink/prompt"
	"github.com/promptdeck/promptdeck/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

func promptFormat(p *prompt.Prompt) string {
	if p.WantsJSON() {
		return "json"
	}
	return "text"
}

func promptSource(p *prompt.Prompt) string {
	source := strings.TrimSpace(p.Source)
	if source == "" {
		return "-"
	}
	return source
}

func promptName(p *prompt.Prompt) string {
	if name := strings.TrimSpace(p.Config.Name); name != "" {
		return name
	}
	return p.Config.Slug
}

func statusLabel(g store.Generation) string {
	if g.Status == store.StatusError && g.ErrorCode != "" {
		return fmt.Sprintf("error (%s)", g.ErrorCode)
	}
	if g.Status == "" {
		return "unknown"
	}
	return g.Status
}

func toolsLabel(tools []string) string {
	if len(tools) == 0 {
		return "-"
	}
	return strings.Join(tools, ", ")
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

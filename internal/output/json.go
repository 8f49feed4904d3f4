package output

import (
	"encoding/json"

	"github.com/promptdeck/promptdeck/internal/ailink/prompt"
	"github.com/promptdeck/promptdeck/internal/store"
)

// JSONFormatter renders listings as JSON.
type JSONFormatter struct {
	Indent bool
}

type promptRecord struct {
	Slug        string `json:"slug"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Reply       string `json:"reply"`
	Source      string `json:"source,omitempty"`
}

type historyRecord struct {
	ID           int64    `json:"id"`
	RequestID    string   `json:"request_id,omitempty"`
	Mode         string   `json:"mode"`
	OutputFormat string   `json:"output_format"`
	Complexity   string   `json:"complexity,omitempty"`
	Model        string   `json:"model,omitempty"`
	Tools        []string `json:"tools"`
	PromptChars  int      `json:"prompt_chars"`
	Status       string   `json:"status"`
	ErrorCode    string   `json:"error_code,omitempty"`
	DurationMS   int64    `json:"duration_ms"`
	CreatedAt    string   `json:"created_at"`
}

// FormatPrompts renders the prompt registry as JSON.
func (f *JSONFormatter) FormatPrompts(prompts []*prompt.Prompt) (string, error) {
	records := make([]promptRecord, 0, len(prompts))
	for _, p := range prompts {
		if p == nil {
			continue
		}
		records = append(records, promptRecord{
			Slug:        p.Config.Slug,
			Name:        p.Config.Name,
			Description: p.Config.Description,
			Reply:       promptFormat(p),
			Source:      p.Source,
		})
	}
	return f.marshal(records)
}

// FormatHistory renders generation history rows as JSON.
func (f *JSONFormatter) FormatHistory(rows []store.Generation) (string, error) {
	records := make([]historyRecord, 0, len(rows))
	for _, g := range rows {
		tools := g.Tools
		if tools == nil {
			tools = []string{}
		}
		records = append(records, historyRecord{
			ID:           g.ID,
			RequestID:    g.RequestID,
			Mode:         g.Mode,
			OutputFormat: g.OutputFormat,
			Complexity:   g.Complexity,
			Model:        g.Model,
			Tools:        tools,
			PromptChars:  g.PromptChars,
			Status:       g.Status,
			ErrorCode:    g.ErrorCode,
			DurationMS:   g.Duration.Milliseconds(),
			CreatedAt:    g.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	return f.marshal(records)
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}

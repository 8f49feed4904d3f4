package ailink

import (
	"strings"

	"github.com/promptdeck/promptdeck/internal/ailink/driver"
)

// Complexity is the triage verdict.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

// ParseComplexity maps a triage reply value onto a verdict. Anything other
// than "simple" is complex, leaving the decision to the planner.
func ParseComplexity(value string) Complexity {
	if strings.EqualFold(strings.TrimSpace(value), string(ComplexitySimple)) {
		return ComplexitySimple
	}
	return ComplexityComplex
}

// TriageResult is the decoded triage reply.
type TriageResult struct {
	Complexity Complexity `json:"complexity"`
	Reason     string     `json:"reason,omitempty"`
	Model      string     `json:"-"`
}

// Plan is the planner's choice of model, tools and rewritten prompt.
type Plan struct {
	FinalModel      string   `json:"final_model"`
	FinalTools      []string `json:"final_tools"`
	OptimizedPrompt string   `json:"optimierter_prompt"`
	FinalURL        *string  `json:"final_url,omitempty"`
}

// ReferenceURL returns the trimmed final_url, or empty.
func (p Plan) ReferenceURL() string {
	if p.FinalURL == nil {
		return ""
	}
	return strings.TrimSpace(*p.FinalURL)
}

// OutputFormat selects the executor prompt and response handling.
type OutputFormat string

const (
	FormatText       OutputFormat = "text"
	FormatCode       OutputFormat = "code"
	FormatPowerpoint OutputFormat = "powerpoint"
)

// ParseOutputFormat normalizes a requested format. Empty and unknown values
// fall back to text.
func ParseOutputFormat(value string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "code":
		return FormatCode
	case "powerpoint", "pptx", "presentation":
		return FormatPowerpoint
	default:
		return FormatText
	}
}

// PlanRequest is the input to the planner call.
type PlanRequest struct {
	Prompt string
	Format OutputFormat
}

// ExecuteRequest is the input to the executor call.
type ExecuteRequest struct {
	Prompt       string
	Model        string
	Tools        []string
	Format       OutputFormat
	ReferenceURL string
}

// ExecuteResult carries the executor reply. For FormatPowerpoint, Content
// is a JSON object that already passed schema validation.
type ExecuteResult struct {
	Content string
	Model   string
	Tools   []string
	Usage   *driver.Usage
}

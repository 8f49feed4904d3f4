package driver

import (
	"context"
	"strings"

	"github.com/promptdeck/promptdeck/internal/ailink/content"
)

// Driver defines the interface for chat completion providers.
type Driver interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *Request) (*Response, error)
	// Name returns the driver identifier (e.g., "groq").
	Name() string
	// Capabilities returns what this driver supports.
	Capabilities() Capabilities
}

// Capabilities describes driver features.
type Capabilities struct {
	SupportsTools      bool
	SupportsJSONFormat bool
}

// Tool is a server-side tool enabled by name, sent as {"type": name}.
type Tool struct {
	Type string `json:"type"`
}

// ResponseFormat specifies the expected response format.
type ResponseFormat struct {
	Type string `json:"type"` // "text", "json_object"
}

// JSONObject requests a JSON object reply.
var JSONObject = &ResponseFormat{Type: "json_object"}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is a provider-agnostic completion request.
type Request struct {
	Model          string
	Messages       []content.Message
	Tools          []Tool
	ResponseFormat *ResponseFormat
	Temperature    *float64
	MaxTokens      *int
	PromptSlug     string
}

// Response is a provider-agnostic completion response.
type Response struct {
	Model        string
	Content      []content.ContentBlock
	FinishReason string
	Usage        *Usage
}

// Text returns the concatenated text of the response.
func (r *Response) Text() string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Content))
	for _, block := range r.Content {
		parts = append(parts, block.Text)
	}
	return strings.Join(parts, "\n")
}

// ToolsFromNames builds the tool list for names.
func ToolsFromNames(names []string) []Tool {
	if len(names) == 0 {
		return nil
	}
	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		tools = append(tools, Tool{Type: name})
	}
	return tools
}

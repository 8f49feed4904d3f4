// Package groq implements the chat driver for Groq's OpenAI-compatible API
// on top of the go-openai SDK.
package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/promptdeck/promptdeck/internal/ailink/content"
	"github.com/promptdeck/promptdeck/internal/ailink/driver"
)

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

const providerName = "groq"

// Client implements driver.Driver for Groq.
type Client struct {
	sdk     *openai.Client
	timeout time.Duration
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient builds a Groq client. An empty API key is rejected at call time.
func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(strings.TrimSpace(opts.APIKey))
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	client := &Client{timeout: opts.Timeout}
	if strings.TrimSpace(opts.APIKey) != "" {
		client.sdk = openai.NewClientWithConfig(cfg)
	}
	return client
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return providerName
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsTools: true, SupportsJSONFormat: true}
}

// Complete sends a chat completion request through the SDK.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil || c.sdk == nil {
		return nil, fmt.Errorf("groq client not configured: api key is required")
	}

	chatReq, err := buildRequest(req)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.sdk.CreateChatCompletion(ctx, chatReq)
	traceExchange(chatReq, resp, err, req.PromptSlug, time.Since(start))
	if err != nil {
		return nil, toProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response choices")
	}

	first := resp.Choices[0]
	return &driver.Response{
		Model:        resp.Model,
		Content:      []content.ContentBlock{{Type: content.ContentTypeText, Text: first.Message.Content}},
		FinishReason: string(first.FinishReason),
		Usage: &driver.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func buildRequest(req *driver.Request) (openai.ChatCompletionRequest, error) {
	if req == nil {
		return openai.ChatCompletionRequest{}, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return openai.ChatCompletionRequest{}, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return openai.ChatCompletionRequest{}, fmt.Errorf("messages are required")
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(req.Messages)),
	}
	for _, msg := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.PlainText(),
		})
	}
	for _, tool := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, openai.Tool{Type: openai.ToolType(tool.Type)})
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Type != "" {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatType(req.ResponseFormat.Type),
		}
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}
	if req.MaxTokens != nil {
		chatReq.MaxTokens = *req.MaxTokens
	}
	return chatReq, nil
}

// toProviderError maps SDK errors onto driver.ProviderError so callers can
// classify them without importing the SDK.
func toProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &driver.ProviderError{
			Provider:   providerName,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		message := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			message = reqErr.Err.Error()
		}
		return &driver.ProviderError{
			Provider:   providerName,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    message,
		}
	}
	return fmt.Errorf("groq request failed: %w", err)
}

func traceExchange(req openai.ChatCompletionRequest, resp openai.ChatCompletionResponse, err error, slug string, elapsed time.Duration) {
	if !driver.IsTracingEnabled() {
		return
	}
	entry := driver.TraceEntry{
		Driver:     providerName,
		Endpoint:   "/chat/completions",
		Model:      req.Model,
		PromptSlug: slug,
		DurationMs: elapsed.Milliseconds(),
	}
	if body, marshalErr := json.Marshal(req); marshalErr == nil {
		entry.RequestBody = body
	}
	if err != nil {
		entry.Error = err.Error()
	} else if body, marshalErr := json.Marshal(resp); marshalErr == nil {
		entry.StatusCode = http.StatusOK
		entry.Response = body
	}
	driver.Trace(entry)
}

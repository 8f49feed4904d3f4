// Package openai implements an OpenAI-compatible chat completions driver
// over plain HTTP.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/promptdeck/promptdeck/internal/ailink/driver"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	endpoint       = "/chat/completions"
)

// Client implements driver.Driver against any OpenAI-compatible endpoint.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration

	// ProviderName labels errors and traces. Defaults to "openai".
	ProviderName string
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}

	return &Client{
		BaseURL: url,
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	if c != nil && c.ProviderName != "" {
		return c.ProviderName
	}
	return "openai"
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsTools: true, SupportsJSONFormat: true}
}

// Complete sends a chat completion request.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("openai client not configured")
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	payload, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	start := time.Now()
	status, respBody, err := c.post(ctx, body)
	trace := driver.TraceEntry{
		Driver:      c.Name(),
		Endpoint:    endpoint,
		Model:       req.Model,
		PromptSlug:  req.PromptSlug,
		RequestBody: body,
		StatusCode:  status,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if json.Valid(respBody) {
		trace.Response = respBody
	}
	if err != nil {
		trace.Error = err.Error()
		driver.Trace(trace)
		return nil, err
	}
	driver.Trace(trace)

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &driver.ProviderError{
			Provider:    c.Name(),
			StatusCode:  status,
			Message:     strings.TrimSpace(string(respBody)),
			RawResponse: respBody,
		}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return toDriverResponse(&parsed)
}

func (c *Client) post(ctx context.Context, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + endpoint
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

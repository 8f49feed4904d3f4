package driver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/ailink/content"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ProviderError{Provider: "groq", StatusCode: http.StatusUnauthorized}, ClassAuth},
		{&ProviderError{Provider: "groq", StatusCode: http.StatusForbidden}, ClassAuth},
		{&ProviderError{Provider: "groq", StatusCode: http.StatusTooManyRequests}, ClassRateLimit},
		{&ProviderError{Provider: "groq", StatusCode: http.StatusBadGateway}, ClassUnavailable},
		{&ProviderError{Provider: "groq", StatusCode: http.StatusBadRequest}, ClassBadRequest},
		{fmt.Errorf("wrapped: %w", &ProviderError{StatusCode: http.StatusServiceUnavailable}), ClassUnavailable},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), ClassTimeout},
		{errors.New("dial tcp: refused"), ClassUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err))
	}
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{Provider: "groq", StatusCode: 429, Message: "slow down"}
	assert.Equal(t, "groq request failed: status 429: slow down", err.Error())
	assert.Equal(t, "openai request failed: boom", (&ProviderError{Provider: "openai", Message: "boom"}).Error())
}

func TestResponseText(t *testing.T) {
	var nilResp *Response
	assert.Empty(t, nilResp.Text())

	resp := &Response{Content: []content.ContentBlock{{Text: "a"}, {Text: "b"}}}
	assert.Equal(t, "a\nb", resp.Text())
}

func TestToolsFromNames(t *testing.T) {
	assert.Nil(t, ToolsFromNames(nil))
	assert.Equal(t, []Tool{{Type: "browser_search"}, {Type: "code_interpreter"}}, ToolsFromNames([]string{"browser_search", "code_interpreter"}))
}

func TestTracerWritesNDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	SetTracer(NewTracer(nopCloser{buf}))
	t.Cleanup(func() { SetTracer(nil) })

	require.True(t, IsTracingEnabled())
	Trace(TraceEntry{Driver: "groq", Endpoint: "/chat/completions", Model: "groq/compound"})
	Trace(TraceEntry{Driver: "groq", Endpoint: "/chat/completions", Error: "boom"})

	scanner := bufio.NewScanner(buf)
	var lines []TraceEntry
	for scanner.Scan() {
		var entry TraceEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "groq/compound", lines[0].Model)
	assert.False(t, lines[0].Timestamp.IsZero())
	assert.Equal(t, "boom", lines[1].Error)
}

func TestTraceWithoutTracerIsNoop(t *testing.T) {
	SetTracer(nil)
	assert.False(t, IsTracingEnabled())
	Trace(TraceEntry{Driver: "groq"})
}

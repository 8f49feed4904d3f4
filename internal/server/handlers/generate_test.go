package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/ailink"
	"github.com/promptdeck/promptdeck/internal/ailink/driver"
	"github.com/promptdeck/promptdeck/internal/deck"
	"github.com/promptdeck/promptdeck/internal/pipeline"
	"github.com/promptdeck/promptdeck/internal/server/middleware"
)

type generatorFunc func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)

func (f generatorFunc) Generate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	return f(ctx, req)
}

type errorBody struct {
	Error     string                 `json:"error"`
	Details   string                 `json:"details"`
	Code      string                 `json:"code"`
	RequestID string                 `json:"request_id"`
	Context   map[string]interface{} `json:"context"`
}

func serveGenerate(t *testing.T, gen Generator, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := middleware.RequestID(&GenerateHandler{Generator: gen})
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.RequestIDHeader, "req-9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGenerateReturnsResponseText(t *testing.T) {
	var got pipeline.Request
	gen := generatorFunc(func(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
		got = req
		return &pipeline.Result{Text: "Hallo Welt"}, nil
	})

	rec := serveGenerate(t, gen, `{"prompt":"Sag hallo","mode":"direct","model":"groq/compound","tools":{"websuche":true},"user_overrides":{"tools":["code_interpreter"]}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"responseText":"Hallo Welt"}`, rec.Body.String())
	assert.Equal(t, "Sag hallo", got.Prompt)
	assert.Equal(t, "direct", got.Mode)
	assert.Equal(t, map[string]bool{"websuche": true}, got.Tools)
	require.NotNil(t, got.UserOverrides)
	assert.Equal(t, []string{"code_interpreter"}, got.UserOverrides.Tools)
	assert.Equal(t, "req-9", got.RequestID)
}

func TestGenerateReturnsAttachment(t *testing.T) {
	gen := generatorFunc(func(context.Context, pipeline.Request) (*pipeline.Result, error) {
		return &pipeline.Result{Document: []byte("PK\x03\x04"), FileName: deck.FileName, MIMEType: deck.MIMEType}, nil
	})

	rec := serveGenerate(t, gen, `{"prompt":"Folien","output_format":"powerpoint"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.presentationml.presentation", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="praesentation.pptx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, "PK\x03\x04", rec.Body.String())
}

func TestGenerateMissingPromptIs400(t *testing.T) {
	gen := &pipeline.Generator{}
	for _, body := range []string{`{}`, `{"prompt":"  "}`, ``} {
		rec := serveGenerate(t, gen, body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)

		resp := decodeError(t, rec)
		assert.Equal(t, MessagePromptRequired, resp.Error)
		assert.Equal(t, "INVALID_INPUT", resp.Code)
		assert.Equal(t, "req-9", resp.RequestID)
	}
}

func TestGenerateMalformedBodyIs500(t *testing.T) {
	called := false
	gen := generatorFunc(func(context.Context, pipeline.Request) (*pipeline.Result, error) {
		called = true
		return nil, nil
	})

	rec := serveGenerate(t, gen, `{"prompt":`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, MessageInternal, resp.Error)
	assert.Contains(t, resp.Details, "decode request body")
	assert.False(t, called)
}

func TestGenerateErrorsAre500WithDetails(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      string
		errorCode string
	}{
		{
			name:      "provider",
			err:       &driver.ProviderError{Provider: "groq", StatusCode: 401, Message: "invalid api key"},
			code:      "PROVIDER_ERROR",
			errorCode: "AILINK_PROVIDER_AUTH",
		},
		{
			name:      "reply decode",
			err:       &ailink.RawResponseError{Slug: "triage", Err: errors.New("decode response: invalid character 'D'")},
			code:      "DATA_PROCESSING_ERROR",
			errorCode: "AILINK_REPLY_INVALID",
		},
		{
			name:      "deck",
			err:       pipeline.ErrDeckInvalid,
			code:      "DATA_PROCESSING_ERROR",
			errorCode: pipeline.CodeDeckInvalid,
		},
		{
			name:      "other",
			err:       errors.New("no model configured"),
			code:      "INTERNAL_ERROR",
			errorCode: pipeline.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := generatorFunc(func(context.Context, pipeline.Request) (*pipeline.Result, error) {
				return nil, tt.err
			})
			rec := serveGenerate(t, gen, `{"prompt":"x"}`)

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, MessageInternal, resp.Error)
			assert.Equal(t, tt.err.Error(), resp.Details)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, "req-9", resp.RequestID)
			assert.Equal(t, tt.errorCode, resp.Context["error_code"])
		})
	}
}

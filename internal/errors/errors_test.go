package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/server/middleware"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[string]int{
		CodeInvalidInput:       http.StatusBadRequest,
		CodeValidationFailed:   http.StatusBadRequest,
		CodeNotFound:           http.StatusNotFound,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeMethodNotAllowed:   http.StatusMethodNotAllowed,
		CodeServiceUnavailable: http.StatusServiceUnavailable,
		CodeProvider:           http.StatusInternalServerError,
		CodeDataProcessing:     http.StatusInternalServerError,
		CodeInternal:           http.StatusInternalServerError,
		"SOMETHING_ELSE":       http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, HTTPStatusFromCode(code), code)
	}
}

func TestEnsureEnvelopeWrapsPlainErrors(t *testing.T) {
	env := EnsureEnvelope(stderrors.New("boom"))
	assert.Equal(t, CodeInternal, env.Code)
	assert.Equal(t, "Ein interner Fehler ist aufgetreten.", env.Message)
	assert.Equal(t, "boom", ResponseDetails(env))

	original := NewUnauthorizedError("nope")
	assert.Same(t, original, EnsureEnvelope(original))
}

func TestEnsureCorrelationIDUsesRequestID(t *testing.T) {
	ctx := middleware.WithRequestID(context.Background(), "req-42")
	env := EnsureCorrelationID(NewInvalidInputError("bad"), ctx)
	assert.Equal(t, "req-42", env.CorrelationID)

	env = EnsureCorrelationID(NewInvalidInputError("bad"), context.Background())
	assert.Contains(t, env.CorrelationID, "fallback-")
}

func TestWrapUsesRequestIDAndKeepsCause(t *testing.T) {
	ctx := middleware.WithRequestID(context.Background(), "req-7")
	env := WrapProvider(ctx, stderrors.New("groq request failed: status 503"), "Ein interner Fehler ist aufgetreten.")
	assert.Equal(t, CodeProvider, env.Code)
	assert.Equal(t, "req-7", env.CorrelationID)
	assert.Equal(t, "groq request failed: status 503", ResponseDetails(env))
}

func TestWithContextKeepsWrappedCause(t *testing.T) {
	env := WrapInternal(context.Background(), stderrors.New("executor call: upstream exploded"), "Ein interner Fehler ist aufgetreten.")
	env = WithContext(env, map[string]interface{}{"error_code": CodeInternal})

	assert.Equal(t, "executor call: upstream exploded", ResponseDetails(env))
	assert.Equal(t, CodeInternal, env.Context["error_code"])
}

func TestRespondWithEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req = req.WithContext(middleware.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	env := WithContext(NewInvalidInputError("Kein Prompt angegeben"), map[string]interface{}{"field": "prompt"})
	RespondWithEnvelope(rec, req, env)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Kein Prompt angegeben", body.Error)
	assert.Equal(t, CodeInvalidInput, body.Code)
	assert.Equal(t, "req-1", body.RequestID)
	assert.Empty(t, body.Details)
	assert.Equal(t, "prompt", body.Context["field"])
}

func TestRespondWithErrorHidesWrappedKeyFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, stderrors.New("invalid character 'x'"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ein interner Fehler ist aufgetreten.", body["error"])
	assert.Equal(t, "invalid character 'x'", body["details"])
	assert.NotContains(t, body, "context")
}

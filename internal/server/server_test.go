package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/pipeline"
)

type echoGenerator struct {
	calls int
}

func (g *echoGenerator) Generate(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	g.calls++
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, pipeline.ErrPromptRequired
	}
	return &pipeline.Result{Text: "echo: " + req.Prompt}, nil
}

func newTestServer(gen *echoGenerator) *Server {
	return New(config.ServerConfig{
		Host:        "127.0.0.1",
		CORSOrigins: []string{"https://mrowinski-thorge.github.io"},
	}, Options{Password: "geheim", Generator: gen})
}

func postGenerate(srv *Server, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := newTestServer(&echoGenerator{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.NotEmpty(t, body["request_id"])
}

func TestGenerateRequiresBearerPassword(t *testing.T) {
	gen := &echoGenerator{}
	srv := newTestServer(gen)

	for _, auth := range []string{"", "Bearer falsch", "geheim", "Basic Z2VoZWlt", "bearer geheim"} {
		rec := postGenerate(srv, auth, `{"prompt":"hi"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code, auth)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Ungültige oder fehlende Authentifizierung", body["error"])
	}
	assert.Zero(t, gen.calls)
}

func TestGenerateThroughRouter(t *testing.T) {
	gen := &echoGenerator{}
	srv := newTestServer(gen)

	rec := postGenerate(srv, "Bearer geheim", `{"prompt":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"responseText":"echo: hi"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = postGenerate(srv, "Bearer geheim", `{"prompt":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Kein Prompt angegeben", body["error"])
}

func TestGenerateCORSPreflight(t *testing.T) {
	srv := newTestServer(&echoGenerator{})

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "https://mrowinski-thorge.github.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "https://mrowinski-thorge.github.io", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGenerateCORSRejectsOtherOrigins(t *testing.T) {
	srv := newTestServer(&echoGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"hi"}`))
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Authorization", "Bearer geheim")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGenerateRejectsGet(t *testing.T) {
	srv := newTestServer(&echoGenerator{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/fulmenhq/gofulmen/errors"

	"github.com/promptdeck/promptdeck/internal/ailink"
	"github.com/promptdeck/promptdeck/internal/ailink/driver"
	apperrors "github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/pipeline"
	"github.com/promptdeck/promptdeck/internal/server/middleware"
)

// User-facing messages.
const (
	MessageUnauthorized   = "Ungültige oder fehlende Authentifizierung"
	MessagePromptRequired = "Kein Prompt angegeben"
	MessageInternal       = "Ein interner Fehler ist aufgetreten."
)

// DefaultMaxBodyBytes caps the request body when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// Generator runs one generation request.
type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// GenerateResponse is the body of a text or code generation.
type GenerateResponse struct {
	ResponseText string `json:"responseText"`
}

// GenerateHandler serves POST /generate.
type GenerateHandler struct {
	Generator    Generator
	MaxBodyBytes int64
}

// ServeHTTP implements http.Handler.
func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	var req pipeline.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(&req); err != nil && !stderrors.Is(err, io.EOF) {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), fmt.Errorf("decode request body: %w", err), MessageInternal))
		return
	}
	req.RequestID = middleware.GetRequestID(r.Context())

	if h.Generator == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("generator not configured"))
		return
	}

	result, err := h.Generator.Generate(r.Context(), req)
	if err != nil {
		respondWithError(w, r, GenerateErrorEnvelope(r.Context(), err))
		return
	}

	if result.IsDocument() {
		w.Header().Set("Content-Type", result.MIMEType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
		w.Header().Set("Content-Length", strconv.Itoa(len(result.Document)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Document)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(GenerateResponse{ResponseText: result.Text})
}

// GenerateErrorEnvelope maps a pipeline error to its response envelope.
// Only a missing prompt is a client error; everything else is a 500 that
// carries the failure text in details.
func GenerateErrorEnvelope(ctx context.Context, err error) *errors.ErrorEnvelope {
	if stderrors.Is(err, pipeline.ErrPromptRequired) {
		return apperrors.EnsureCorrelationID(apperrors.NewInvalidInputError(MessagePromptRequired), ctx)
	}

	fields := map[string]interface{}{"error_code": pipeline.ErrorCode(err)}

	var rawErr *ailink.RawResponseError
	var providerErr *driver.ProviderError
	var envelope *errors.ErrorEnvelope
	switch {
	case stderrors.As(err, &rawErr), stderrors.Is(err, pipeline.ErrDeckInvalid):
		envelope = apperrors.WrapDataProcessing(ctx, err, MessageInternal)
	case stderrors.As(err, &providerErr), driver.Classify(err) == driver.ClassTimeout:
		fields["provider_class"] = driver.Classify(err)
		envelope = apperrors.WrapProvider(ctx, err, MessageInternal)
	default:
		envelope = apperrors.WrapInternal(ctx, err, MessageInternal)
	}
	return apperrors.WithContext(envelope, fields)
}

package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/metrics"
	"github.com/promptdeck/promptdeck/internal/observability"
)

// Recovery turns panics into a 500 JSON error response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				panicErr := errors.NewErrorEnvelope("INTERNAL_ERROR", "Ein interner Fehler ist aufgetreten.").
					WithCorrelationID(GetRequestID(r.Context()))
				panicErr, _ = panicErr.WithSeverity(errors.SeverityCritical)

				metrics.RecordPanic()
				if observability.ServerLogger != nil {
					observability.ServerLogger.Error("Recovered from panic",
						zap.String("panic", fmt.Sprint(rec)),
						zap.String("stack_trace", string(debug.Stack())),
						zap.String("request_id", panicErr.CorrelationID))
				}

				writeErrorResponse(w, panicErr, fmt.Sprint(rec), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// errorBody mirrors the service error shape; kept local to avoid an import cycle
// with internal/errors.
type errorBody struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func writeErrorResponse(w http.ResponseWriter, envelope *errors.ErrorEnvelope, details string, statusCode int) {
	response := errorBody{
		Error:     envelope.Message,
		Details:   details,
		Code:      envelope.Code,
		RequestID: envelope.CorrelationID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

package driver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ProviderError is returned when a provider responds with a non-2xx status.
//
// RawResponse holds the provider response body and must never include API keys.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Message     string
	RawResponse []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// Classification buckets for provider failures.
const (
	ClassAuth        = "auth"
	ClassRateLimit   = "rate_limit"
	ClassUnavailable = "unavailable"
	ClassBadRequest  = "bad_request"
	ClassTimeout     = "timeout"
	ClassUnknown     = "unknown"
)

// Classify buckets err by provider status.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var perr *ProviderError
	if !errors.As(err, &perr) || perr == nil {
		return ClassUnknown
	}
	switch status := perr.StatusCode; {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ClassAuth
	case status == http.StatusTooManyRequests:
		return ClassRateLimit
	case status >= 500 && status <= 599:
		return ClassUnavailable
	case status >= 400 && status <= 499:
		return ClassBadRequest
	default:
		return ClassUnknown
	}
}

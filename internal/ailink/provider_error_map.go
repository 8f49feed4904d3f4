package ailink

import (
	"errors"
	"strings"

	"github.com/promptdeck/promptdeck/internal/ailink/driver"
)

// CallError summarizes a failed model call for logs and error context.
type CallError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// DescribeError classifies err. It returns nil for nil.
func DescribeError(err error) *CallError {
	if err == nil {
		return nil
	}

	var rawErr *RawResponseError
	if errors.As(err, &rawErr) {
		return &CallError{Code: "AILINK_REPLY_INVALID", Message: "model reply could not be decoded", Details: rawErr.Error()}
	}

	details := err.Error()
	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		details = strings.TrimSpace(perr.Message)
	}

	switch driver.Classify(err) {
	case driver.ClassTimeout:
		return &CallError{Code: "AILINK_PROVIDER_TIMEOUT", Message: "provider request timed out", Details: details}
	case driver.ClassAuth:
		return &CallError{Code: "AILINK_PROVIDER_AUTH", Message: "provider authentication failed", Details: details}
	case driver.ClassRateLimit:
		return &CallError{Code: "AILINK_PROVIDER_RATE_LIMIT", Message: "provider rate limited", Details: details}
	case driver.ClassUnavailable:
		return &CallError{Code: "AILINK_PROVIDER_UNAVAILABLE", Message: "provider unavailable", Details: details}
	case driver.ClassBadRequest:
		return &CallError{Code: "AILINK_PROVIDER_BAD_REQUEST", Message: "provider rejected request", Details: details}
	default:
		return &CallError{Code: "AILINK_PROVIDER_ERROR", Message: "provider request failed", Details: details}
	}
}

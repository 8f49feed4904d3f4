package ailink

import (
	"encoding/json"
	"fmt"
)

// RawResponseError reports a reply that could not be decoded or failed its
// prompt's response schema. Raw holds the reply for debugging.
type RawResponseError struct {
	Slug string
	Err  error
	Raw  json.RawMessage
}

func (e *RawResponseError) Error() string {
	if e == nil || e.Err == nil {
		return "ailink error"
	}
	if e.Slug == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s reply: %s", e.Slug, e.Err.Error())
}

func (e *RawResponseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

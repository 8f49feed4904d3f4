// Package deck turns a model's slide JSON into a presentation document.
package deck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/promptdeck/promptdeck/internal/deck/pptx"
)

// MIMEType is the content type of generated decks.
const MIMEType = pptx.MIMEType

// FileName is the download name of generated decks.
const FileName = "praesentation.pptx"

// UntitledSlide is shown when a slide has no title.
const UntitledSlide = "Kein Titel"

// Spec is the slide deck the executor model returns.
type Spec struct {
	Slides []SlideSpec `json:"slides"`
}

// SlideSpec is one slide of a Spec.
type SlideSpec struct {
	Title            string `json:"title"`
	Content          Lines  `json:"content"`
	Notes            string `json:"notes,omitempty"`
	ImageSearchQuery string `json:"image_search_query,omitempty"`
}

// Lines accepts either a JSON array or a single value. Non-string items are
// rendered with their JSON text.
type Lines []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lines) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	var items []json.RawMessage
	if trimmed[0] != '[' {
		items = []json.RawMessage{trimmed}
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			out = append(out, text)
			continue
		}
		out = append(out, string(bytes.TrimSpace(item)))
	}
	*l = out
	return nil
}

// Decode parses raw slide JSON. A missing slides key is an empty deck.
func Decode(raw []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("decode slide deck: %w", err)
	}
	return &spec, nil
}

// DisplayTitle returns the slide title, or UntitledSlide when blank.
func (s SlideSpec) DisplayTitle() string {
	if title := strings.TrimSpace(s.Title); title != "" {
		return title
	}
	return UntitledSlide
}

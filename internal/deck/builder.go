package deck

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/deck/pptx"
	"github.com/promptdeck/promptdeck/internal/imagesearch"
	"github.com/promptdeck/promptdeck/internal/metrics"
	"github.com/promptdeck/promptdeck/internal/observability"
)

// Image lookup outcomes recorded per slide.
const (
	imageFound    = "found"
	imageNotFound = "not_found"
	imageFailed   = "error"
	imageInvalid  = "decode_error"
)

// Builder assembles presentations from slide specs.
type Builder struct {
	// Images is optional; nil disables picture lookups.
	Images imagesearch.Searcher

	MaxImageDimension int
	JPEGQuality       int
	Title             string
	Author            string

	now func() time.Time
}

// Build renders spec as a pptx package. Image failures are logged and the
// slide is rendered without a picture.
func (b *Builder) Build(ctx context.Context, spec *Spec) ([]byte, error) {
	if spec == nil {
		spec = &Spec{}
	}

	presentation := &pptx.Presentation{
		Title:   b.Title,
		Author:  b.Author,
		Created: b.clock(),
		Slides:  make([]pptx.Slide, 0, len(spec.Slides)),
	}
	if presentation.Title == "" && len(spec.Slides) > 0 {
		presentation.Title = spec.Slides[0].DisplayTitle()
	}

	for i, slideSpec := range spec.Slides {
		slide := pptx.Slide{
			Title: slideSpec.DisplayTitle(),
			Notes: strings.TrimSpace(slideSpec.Notes),
		}
		for _, item := range slideSpec.Content {
			if line := PlainText(item); line != "" {
				slide.Bullets = append(slide.Bullets, line)
			}
		}
		slide.Picture = b.picture(ctx, i, slideSpec.ImageSearchQuery)
		presentation.Slides = append(presentation.Slides, slide)
	}

	data, err := pptx.Encode(presentation)
	if err != nil {
		return nil, err
	}
	metrics.RecordDeckSlides(len(presentation.Slides))
	return data, nil
}

func (b *Builder) picture(ctx context.Context, index int, query string) *pptx.Picture {
	query = strings.TrimSpace(query)
	if b.Images == nil || query == "" {
		return nil
	}

	logger := observability.Logger()
	photo, err := b.Images.Search(ctx, query)
	if err != nil {
		status := imageFailed
		if errors.Is(err, imagesearch.ErrNoResults) {
			status = imageNotFound
		}
		metrics.RecordImageLookup(status)
		if logger != nil {
			logger.Warn("image lookup failed, rendering slide without picture",
				zap.Int("slide", index+1),
				zap.String("query", query),
				zap.Error(err))
		}
		return nil
	}

	picture, err := fitImage(photo.Data, b.MaxImageDimension, b.JPEGQuality)
	if err != nil {
		metrics.RecordImageLookup(imageInvalid)
		if logger != nil {
			logger.Warn("image decode failed, rendering slide without picture",
				zap.Int("slide", index+1),
				zap.String("source", photo.SourceURL),
				zap.Error(err))
		}
		return nil
	}

	metrics.RecordImageLookup(imageFound)
	picture.Description = query
	if photo.Photographer != "" {
		picture.Description = query + " (Foto: " + photo.Photographer + ")"
	}
	return picture
}

func (b *Builder) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

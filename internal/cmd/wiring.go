package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/ailink"
	"github.com/promptdeck/promptdeck/internal/ailink/prompt"
	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/deck"
	"github.com/promptdeck/promptdeck/internal/imagesearch"
	"github.com/promptdeck/promptdeck/internal/observability"
	"github.com/promptdeck/promptdeck/internal/pipeline"
	"github.com/promptdeck/promptdeck/internal/store"
)

// components holds everything a generation needs. Close releases the store.
type components struct {
	Prompts   *prompt.InMemoryRegistry
	Service   *ailink.Service
	Decks     *deck.Builder
	Store     *store.Store
	Generator *pipeline.Generator
}

func (c *components) Close() {
	if c == nil || c.Store == nil {
		return
	}
	if err := c.Store.Close(); err != nil {
		if logger := observability.Logger(); logger != nil {
			logger.Warn("Failed to close history store", zap.Error(err))
		}
	}
}

func newImageSearcher(cfg *config.Config) imagesearch.Searcher {
	if !cfg.Images.Enabled {
		return nil
	}
	return imagesearch.New(imagesearch.Options{
		APIKey:  cfg.Images.APIKey,
		BaseURL: cfg.Images.BaseURL,
		Timeout: cfg.Images.Timeout,
	})
}

func newDeckBuilder(cfg *config.Config, images imagesearch.Searcher) *deck.Builder {
	return &deck.Builder{
		Images:            images,
		MaxImageDimension: cfg.Deck.MaxImageDimension,
		JPEGQuality:       cfg.Deck.JPEGQuality,
		Author:            appIdentity.BinaryName,
	}
}

// openHistory opens the history store when enabled. A store that cannot be
// opened disables history instead of failing the command.
func openHistory(ctx context.Context, cfg *config.Config) *store.Store {
	if !cfg.Store.Enabled {
		return nil
	}
	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		if logger := observability.Logger(); logger != nil {
			logger.Warn("History store unavailable, generations will not be recorded", zap.Error(err))
		}
		return nil
	}
	return db
}

func buildComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	prompts, err := prompt.BuildRegistry(strings.TrimSpace(cfg.AILink.PromptsDir))
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	service := ailink.NewService(ailink.NewProviders(cfg.AILink), prompts)
	images := newImageSearcher(cfg)
	if images == nil {
		if logger := observability.Logger(); logger != nil {
			logger.Debug("Image search disabled; slides render without pictures")
		}
	}

	c := &components{
		Prompts: prompts,
		Service: service,
		Decks:   newDeckBuilder(cfg, images),
		Store:   openHistory(ctx, cfg),
	}

	// A nil *store.Store must not reach the generator as a non-nil interface.
	var history pipeline.HistoryRecorder
	if c.Store != nil {
		history = c.Store
	}
	c.Generator = pipeline.New(service, c.Decks, history)
	return c, nil
}

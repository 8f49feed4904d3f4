package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/deck"
	"github.com/promptdeck/promptdeck/internal/imagesearch"
	"github.com/promptdeck/promptdeck/internal/observability"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Slide deck utilities",
}

var deckRenderCmd = &cobra.Command{
	Use:   "render <slides.json>",
	Short: "Render a slide deck JSON file as PowerPoint",
	Long: `Render a slide deck description as a .pptx file without calling a model.

The input has the shape the powerpoint executor replies with:

  {"slides": [{"title": "...", "content": ["..."], "notes": "...",
               "image_search_query": "..."}]}

Use - to read from stdin. Pictures are fetched only with --images and a
configured PEXELS_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeckRender,
}

func init() {
	rootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckRenderCmd)

	deckRenderCmd.Flags().StringP("out", "o", deck.FileName, "Output .pptx path")
	deckRenderCmd.Flags().Bool("images", false, "Look up one stock photo per slide")
	deckRenderCmd.Flags().String("title", "", "Presentation title (defaults to the first slide title)")
}

func runDeckRender(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")
	withImages, _ := cmd.Flags().GetBool("images")
	title, _ := cmd.Flags().GetString("title")

	raw, err := readDeckInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	spec, err := deck.Decode(raw)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	observability.DisableMetrics()

	var images imagesearch.Searcher
	if withImages {
		images = newImageSearcher(cfg)
		if images == nil {
			observability.CLILogger.Warn("Image search requested but no Pexels API key is configured")
		}
	}
	builder := newDeckBuilder(cfg, images)
	builder.Title = title

	data, err := builder.Build(cmd.Context(), spec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	observability.CLILogger.Info("Slide deck written",
		zap.String("file", outPath),
		zap.Int("slides", len(spec.Slides)),
		zap.Int("bytes", len(data)))
	return nil
}

func readDeckInput(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxPromptFileBytes))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read slide deck: %w", err)
	}
	return data, nil
}

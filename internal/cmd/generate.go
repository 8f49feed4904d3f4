package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/observability"
	"github.com/promptdeck/promptdeck/internal/pipeline"
)

// maxPromptFileBytes bounds prompts read from a file or stdin.
const maxPromptFileBytes = 1 << 20

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Run a prompt through the generation pipeline",
	Long: `Run a prompt through triage, planning and execution from the terminal.

Text and code replies are written to stdout. Slide decks are written to
--out (default praesentation.pptx).

Examples:
  promptdeck generate "Erkläre Quicksort"
  promptdeck generate --format powerpoint --out talk.pptx "Vortrag über Bienen"
  echo "Fasse die Nachrichten zusammen" | promptdeck generate --file - --tool websuche`,
	Args: cobra.ArbitraryArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("file", "f", "", "Read the prompt from a file (- for stdin)")
	generateCmd.Flags().StringP("mode", "m", string(pipeline.ModeAuto), "Pipeline mode: auto, plan, direct")
	generateCmd.Flags().String("format", "text", "Output format: text, code, powerpoint")
	generateCmd.Flags().String("model", "", "Executor model for direct mode")
	generateCmd.Flags().StringSlice("tool", nil, "Enable a tool (websuche, code_interpreter, visit_website); repeatable")
	generateCmd.Flags().String("override-model", "", "Model that wins over the planner choice")
	generateCmd.Flags().StringSlice("override-tools", nil, "Tools that win over the planner choice")
	generateCmd.Flags().StringP("out", "o", "", "Write the reply to this file instead of stdout")
	generateCmd.Flags().Bool("json", false, "Print the reply and pipeline trace as JSON")
}

type generateOutput struct {
	Text       string   `json:"text,omitempty"`
	File       string   `json:"file,omitempty"`
	Mode       string   `json:"mode"`
	Format     string   `json:"format"`
	Complexity string   `json:"complexity,omitempty"`
	Planned    bool     `json:"planned"`
	Model      string   `json:"model"`
	Tools      []string `json:"tools"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, _ := cmd.Flags().GetString("file")
	text, err := readPrompt(args, file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	mode, _ := cmd.Flags().GetString("mode")
	format, _ := cmd.Flags().GetString("format")
	model, _ := cmd.Flags().GetString("model")
	tools, _ := cmd.Flags().GetStringSlice("tool")
	outPath, _ := cmd.Flags().GetString("out")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	req := pipeline.Request{
		Prompt:       text,
		Mode:         mode,
		OutputFormat: format,
		Model:        model,
		Tools:        toolToggles(tools),
		RequestID:    "cli-" + uuid.NewString(),
	}
	if cmd.Flags().Changed("override-model") || cmd.Flags().Changed("override-tools") {
		overrideModel, _ := cmd.Flags().GetString("override-model")
		overrideTools, _ := cmd.Flags().GetStringSlice("override-tools")
		req.UserOverrides = &pipeline.Overrides{Model: overrideModel, Tools: overrideTools}
	}

	cfg, err := loadConfig()
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid configuration", err)
	}
	if err := cfg.Validate(false); err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Missing required configuration", err)
	}
	observability.DisableMetrics()

	parts, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer parts.Close()

	result, err := parts.Generator.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	out := generateOutput{
		Mode:       string(result.Trace.Mode),
		Format:     string(result.Trace.Format),
		Complexity: string(result.Trace.Complexity),
		Planned:    result.Trace.Planned,
		Model:      result.Trace.Model,
		Tools:      result.Trace.Tools,
	}
	if out.Tools == nil {
		out.Tools = []string{}
	}

	if result.IsDocument() {
		if outPath == "" {
			outPath = result.FileName
		}
		if err := os.WriteFile(outPath, result.Document, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		out.File = outPath
		observability.CLILogger.Info("Slide deck written",
			zap.String("file", outPath),
			zap.Int("bytes", len(result.Document)))
	} else if outPath != "" && !jsonOutput {
		if err := os.WriteFile(outPath, []byte(result.Text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		out.File = outPath
	} else {
		out.Text = result.Text
	}

	observability.CLILogger.Debug("Generation trace",
		zap.String("mode", out.Mode),
		zap.String("complexity", out.Complexity),
		zap.String("model", out.Model),
		zap.Strings("tools", out.Tools))

	if !jsonOutput && (result.IsDocument() || verbose) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), ascii.DrawBox(strings.Join(summaryLines(out), "\n"), 0))
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if out.Text != "" {
		_, err = fmt.Fprintln(w, out.Text)
	}
	return err
}

// readPrompt joins positional args, or reads file ("-" is stdin).
func readPrompt(args []string, file string, stdin io.Reader) (string, error) {
	if file == "" {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return "", errors.New("prompt is required (pass it as an argument or use --file)")
		}
		return text, nil
	}
	if len(args) > 0 {
		return "", errors.New("pass the prompt either as arguments or with --file, not both")
	}

	var r io.Reader
	if file == "-" {
		r = stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("open prompt file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(bufio.NewReader(r), maxPromptFileBytes))
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("prompt is empty")
	}
	return text, nil
}

func toolToggles(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	toggles := make(map[string]bool, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			toggles[name] = true
		}
	}
	return toggles
}

func summaryLines(out generateOutput) []string {
	complexity := out.Complexity
	if complexity == "" {
		complexity = "-"
	}
	tools := "-"
	if len(out.Tools) > 0 {
		tools = strings.Join(out.Tools, ", ")
	}
	lines := []string{
		"Mode:       " + out.Mode,
		"Format:     " + out.Format,
		"Complexity: " + complexity,
		fmt.Sprintf("Planned:    %t", out.Planned),
		"Model:      " + out.Model,
		"Tools:      " + tools,
	}
	if out.File != "" {
		lines = append(lines, "File:       "+out.File)
	}
	return lines
}

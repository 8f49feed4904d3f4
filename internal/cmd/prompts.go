package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/ailink/prompt"
	"github.com/promptdeck/promptdeck/internal/output"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the prompt registry",
	Long: `List the triage, planner and executor prompts in use, including
overrides loaded from ailink.prompts_dir.`,
	Args: cobra.NoArgs,
	RunE: runPrompts,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Print a prompt's system template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadPromptRegistry()
		if err != nil {
			return err
		}
		p, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "# %s (%s)\n\n", p.Config.Slug, p.Source)
		_, _ = fmt.Fprintln(w, strings.TrimSpace(p.Config.SystemTemplate))
		if user := strings.TrimSpace(p.Config.UserTemplate); user != "" {
			_, _ = fmt.Fprintf(w, "\n## user_template\n\n%s\n", user)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.AddCommand(promptsShowCmd)

	promptsCmd.Flags().StringP("output", "o", "table", "Output format: table, json, markdown")
}

func loadPromptRegistry() (*prompt.InMemoryRegistry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return prompt.BuildRegistry(strings.TrimSpace(cfg.AILink.PromptsDir))
}

func runPrompts(cmd *cobra.Command, args []string) error {
	value, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(value)
	if err != nil {
		return err
	}

	reg, err := loadPromptRegistry()
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	rendered, err := output.NewFormatter(format).FormatPrompts(reg.List())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

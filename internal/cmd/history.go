package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/output"
	"github.com/promptdeck/promptdeck/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generations",
	Long: `List recent generations from the history store. Only metadata is
recorded: mode, format, model, tools, status and timing. Prompts and replies
are never stored.

History is written by serve and generate when store.enabled is true.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Number of rows to show")
	historyCmd.Flags().StringP("output", "o", "table", "Output format: table, json, markdown")
}

func runHistory(cmd *cobra.Command, args []string) error {
	value, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(value)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Store.Enabled {
		return errors.New("history store is disabled (set store.enabled: true)")
	}

	db, err := store.Open(cmd.Context(), cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.RecentGenerations(cmd.Context(), limit)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatHistory(rows)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

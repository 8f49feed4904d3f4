package cmd

import (
	"context"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/ailink/prompt"
	errwrap "github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/observability"
	"github.com/promptdeck/promptdeck/internal/server/handlers"
	"github.com/promptdeck/promptdeck/internal/store"
)

type selfCheck struct {
	name  string
	check func(ctx context.Context) error
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Verify that serve could start: configuration and credentials, the
prompt registry, and the history store when enabled. No model is called.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		logger.Info("Running health check...")

		cfg, err := loadConfig()
		if err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Configuration could not be decoded", err)
			return
		}

		checks := []selfCheck{
			{name: "version", check: func(context.Context) error {
				if handlers.CurrentBuildInfo().Version == "" {
					return errwrap.NewConfigInvalidError("version information missing")
				}
				return nil
			}},
			{name: "credentials", check: func(context.Context) error {
				return cfg.Validate(true)
			}},
			{name: "prompts", check: func(context.Context) error {
				_, err := prompt.BuildRegistry(cfg.AILink.PromptsDir)
				return err
			}},
		}
		if cfg.Store.Enabled {
			checks = append(checks, selfCheck{name: "history_store", check: func(ctx context.Context) error {
				db, err := store.Open(ctx, cfg.Store)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()
				return db.CheckHealth(ctx)
			}})
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		var failed error
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				logger.Error("❌ FAIL: "+c.name, zap.Error(err))
				if failed == nil {
					failed = err
				}
				continue
			}
			logger.Info("✅ " + c.name)
		}

		if failed != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Health check failed", failed)
			return
		}

		logger.Info("")
		logger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

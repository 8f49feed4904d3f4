package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/observability"
	"github.com/promptdeck/promptdeck/internal/server/handlers"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime and resolved configuration. Secrets are reported as set or not set.",
	Run: func(cmd *cobra.Command, args []string) {
		log := observability.CLILogger
		build := handlers.CurrentBuildInfo()
		version := crucible.GetVersion()

		log.Info("=== promptdeck environment ===")
		log.Info("")
		log.Info("Application:")
		log.Info("  Name:       " + build.Name)
		log.Info("  Version:    " + build.Version)
		log.Info("  Commit:     " + build.Commit)
		log.Info("  Built:      " + build.BuildDate)
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("")

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		log.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		log.Info("")

		cfg, err := loadConfig()
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return
		}

		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			configFile = config.DefaultConfigPath() + " (not found)"
		}

		log.Info("Server:")
		log.Info(fmt.Sprintf("  Listen:         %s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info("  CORS Origins:   " + strings.Join(cfg.Server.CORSOrigins, ", "))
		log.Info("  Password:       " + secretStatus(cfg.Auth.Password))
		log.Info("  Config File:    " + configFile)
		log.Info("  Log Level:      " + cfg.Logging.Level)
		log.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		log.Info("")

		log.Info("Models:")
		log.Info("  Default Provider: " + cfg.AILink.DefaultProvider)
		log.Info("  API Key:          " + secretStatus(cfg.ProviderAPIKey()))
		log.Info("  Triage:           " + cfg.AILink.Models.Triage)
		log.Info("  Planner:          " + cfg.AILink.Models.Planner)
		log.Info("  Executor:         " + cfg.AILink.Models.Executor)
		log.Info("  Allowed Models:   " + strings.Join(cfg.AILink.AllowedModels, ", "))
		log.Info("  Allowed Tools:    " + strings.Join(cfg.AILink.AllowedTools, ", "))
		if cfg.AILink.DefaultTimeout > 0 {
			log.Info("  Call Timeout:     " + cfg.AILink.DefaultTimeout.String())
		} else {
			log.Info("  Call Timeout:     none")
		}
		if dir := strings.TrimSpace(cfg.AILink.PromptsDir); dir != "" {
			log.Info("  Prompts Dir:      " + dir)
		}
		log.Info("")

		log.Info("Slides:")
		log.Info(fmt.Sprintf("  Image Search:   %t", cfg.Images.Enabled && strings.TrimSpace(cfg.Images.APIKey) != ""))
		log.Info("  Pexels Key:     " + secretStatus(cfg.Images.APIKey))
		log.Info(fmt.Sprintf("  Max Image:      %dpx", cfg.Deck.MaxImageDimension))
		log.Info("")

		log.Info("History:")
		log.Info(fmt.Sprintf("  Enabled:        %t", cfg.Store.Enabled))
		if strings.TrimSpace(cfg.Store.URL) != "" {
			log.Info("  DB URL:         " + cfg.Store.URL)
		} else {
			log.Info("  DB Path:        " + cfg.Store.Path)
		}
		log.Info("")
		log.Info("=== end ===")
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}

func secretStatus(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "(set)"
}

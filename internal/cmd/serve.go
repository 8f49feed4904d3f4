package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/config"
	errwrap "github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/metrics"
	"github.com/promptdeck/promptdeck/internal/observability"
	"github.com/promptdeck/promptdeck/internal/server"
	"github.com/promptdeck/promptdeck/internal/server/handlers"
)

// adminTokenEnv enables the /admin/signal endpoint when set.
const adminTokenEnv = "PROMPTDECK_ADMIN_TOKEN"

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// credentialsHealthChecker reports a deployment that lost its secrets.
type credentialsHealthChecker struct {
	cfg *config.Config
}

func (c credentialsHealthChecker) CheckHealth(ctx context.Context) error {
	if err := c.cfg.Validate(true); err != nil {
		return errwrap.WrapConfigInvalid(ctx, err, "credentials missing")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

POST /generate requires "Authorization: Bearer <WEBSITE_PASSWORD>".
GROQ_API_KEY and WEBSITE_PASSWORD must be set; PEXELS_API_KEY enables
slide pictures.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Re-read the config file (restart to apply changes)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "server host")
	serveCmd.Flags().IntP("port", "p", 5001, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid configuration", err)
	}
	if err := cfg.Validate(true); err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Missing required configuration", errwrap.WrapConfigInvalid(cmd.Context(), err, "missing required configuration"))
	}

	identity := GetAppIdentity()
	namespace := identity.TelemetryNamespace()
	build := handlers.CurrentBuildInfo()

	observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, "", namespace)
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port, namespace); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
		}
		metrics.SetServerStartTime(time.Now().Unix())
	} else {
		observability.DisableMetrics()
	}

	parts, err := buildComponents(cmd.Context(), cfg)
	if err != nil {
		ExitWithCode(logger, foundry.ExitConfigInvalid, "Failed to build generation pipeline", err)
	}

	logger.Info("Initializing server",
		zap.String("service", identity.BinaryName),
		zap.String("namespace", namespace),
		zap.String("version", build.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("metrics_port", observability.GetMetricsPort()),
		zap.String("executor_model", cfg.AILink.Models.Executor),
		zap.Strings("cors_origins", cfg.Server.CORSOrigins),
		zap.Bool("image_search", parts.Decks.Images != nil),
		zap.Bool("history", parts.Store != nil))

	handlers.InitHealthManager(build.Version)
	hm := handlers.GetHealthManager()
	hm.RegisterChecker("signal_handlers", handlers.HealthCheckFunc(func(context.Context) error { return nil }))
	hm.RegisterChecker("credentials", credentialsHealthChecker{cfg: cfg})
	if cfg.Metrics.Enabled {
		hm.RegisterChecker("telemetry", telemetryHealthChecker{})
	}
	if parts.Store != nil {
		hm.RegisterChecker("history_store", parts.Store)
	}

	srv := server.New(cfg.Server, server.Options{
		Password:   cfg.Auth.Password,
		Generator:  parts.Generator,
		AdminToken: strings.TrimSpace(os.Getenv(adminTokenEnv)),
	})

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	// Shutdown handlers run LIFO: the HTTP server stops before the store
	// closes and the logger flushes.
	signals.OnShutdown(func(ctx context.Context) error {
		if err := logger.Sync(); err != nil {
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		parts.Close()
		return observability.StopMetrics()
	})

	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.WrapInternal(ctx, err, "server shutdown failed")
		}

		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: re-reading config file")

		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				logger.Info("No config file found - using defaults and environment variables")
				return nil
			}
			logger.Error("Failed to reload config file",
				zap.String("file", viper.ConfigFileUsed()),
				zap.Error(err))
			return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
		}

		logger.Info("Configuration file re-read; restart to apply changes",
			zap.String("file", viper.ConfigFileUsed()))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server...", zap.String("addr", srv.Addr()))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(cmd.Context()); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.WrapInternal(cmd.Context(), err, "server error")
	}

	return nil
}

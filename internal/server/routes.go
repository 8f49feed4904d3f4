package server

import (
	"net/http"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/observability"
	"github.com/promptdeck/promptdeck/internal/server/handlers"
	servermw "github.com/promptdeck/promptdeck/internal/server/middleware"
)

func (s *Server) registerRoutes() {
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)
	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", MetricsHandler)

	// CORS runs before auth so preflight requests are answered without
	// credentials.
	s.router.Group(func(r chi.Router) {
		r.Use(s.corsMiddleware())
		r.Use(servermw.BearerAuth(s.opts.Password, func() error {
			return apperrors.NewUnauthorizedError(handlers.MessageUnauthorized)
		}, HandleError))
		r.Method(http.MethodPost, "/generate", &handlers.GenerateHandler{
			Generator:    s.opts.Generator,
			MaxBodyBytes: s.cfg.MaxBodyBytes,
		})
		r.Options("/generate", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	s.registerAdminEndpoint()
}

func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger
	if s.opts.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no admin token configured)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.opts.AdminToken,
		RateLimit: 10, // requests per minute
		RateBurst: 5,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
	}
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voxbridge/chatwoot-rasa-bridge/internal/bridge"
	httpmiddleware "github.com/voxbridge/chatwoot-rasa-bridge/internal/http/middleware"
	"github.com/voxbridge/chatwoot-rasa-bridge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	BridgeHandler  *bridge.Handler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Post("/", cfg.BridgeHandler.HandleWebhook)
	r.Get("/health-check/", cfg.BridgeHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}

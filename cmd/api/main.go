package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxbridge/chatwoot-rasa-bridge/internal/api/router"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/bridge"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/chatwoot"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/classifier"
	appconfig "github.com/voxbridge/chatwoot-rasa-bridge/internal/config"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/extract"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/observability/metrics"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/rasa"
	"github.com/voxbridge/chatwoot-rasa-bridge/pkg/logging"
)

func main() {
	// .env is optional; real deployments inject environment directly
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting chatwoot-rasa-bridge",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	rasaClient, err := rasa.NewClient(rasa.Config{
		BaseURL:         cfg.RasaURL,
		Channel:         cfg.RasaChannel,
		TokenSecret:     cfg.RasaJWTTokenSecret,
		MaxMessageChars: cfg.MaxMessageChars,
		MaxRetries:      cfg.BotRetryCount,
		BaseDelay:       cfg.BotRetryBaseDelay,
		Timeout:         cfg.BotRequestTimeout,
		Extractor:       rasa.NewExtractor(cfg.MaxButtonTitleLength, cfg.MaxButtons, nil, logger),
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to configure rasa client", "error", err)
		os.Exit(1)
	}

	chatwootClient := chatwoot.NewClient(cfg.ChatwootURL, cfg.ChatwootBotToken)
	extractorClient := extract.NewClient(cfg.ExtractorURL, cfg.ExtractorTimeout)

	cls := classifier.New(classifier.Config{
		AllowBotMention: cfg.AllowBotMention,
		BotName:         cfg.BotName,
		EnableCSAT:      cfg.EnableCSAT,
	}, extractorClient, logger)

	bridgeMetrics := metrics.NewBridgeMetrics(prometheus.DefaultRegisterer)

	handler := bridge.NewHandler(bridge.Config{
		TypingStatusEnabled: cfg.TypingStatusEnabled,
		CSATMessage:         cfg.CSATMessage,
	}, cls, rasaClient, chatwootClient, bridgeMetrics, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		BridgeHandler:  handler,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		// the bot retry loop blocks the handler; leave room for a full
		// retry budget of per-attempt timeouts plus backoff
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

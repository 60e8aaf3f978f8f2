package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
	"github.com/thebartekbanach/tinyrelay/pkg/config"
	"github.com/thebartekbanach/tinyrelay/pkg/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("RELAY_CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("error ocurred when loading configuration")
	}

	logger := logging.NewLogger(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Environment}); err != nil {
			logger.Fatal().Err(err).Msg("error ocurred when initializing sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("upstream", cfg.UpstreamURL).Msg("initializing relay service")
	relayService := InitializeRelay(cfg, logger)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(cfg, logger, relayService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("error ocurred when shutting down http server")
		}
	}()

	logger.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("http server stopped")
	}

	logger.Info().Msg("http server stopped gracefully")
}

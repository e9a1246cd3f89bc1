package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movie-journal/internal/config"
	httpserver "github.com/Clark-Hu/movie-journal/internal/http"
	"github.com/Clark-Hu/movie-journal/internal/logging"
	"github.com/Clark-Hu/movie-journal/internal/metrics"
	"github.com/Clark-Hu/movie-journal/internal/omdb"
	"github.com/Clark-Hu/movie-journal/internal/repository"
	"github.com/Clark-Hu/movie-journal/internal/stats"
	"github.com/Clark-Hu/movie-journal/internal/store"
	"github.com/Clark-Hu/movie-journal/internal/supervisor"
)

const poolMetricsInterval = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{Output: os.Stderr})
		bootLogger.Fatal().Err(err).Msg("config error")
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.OptionsFromConfig(cfg, logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	lookup, err := omdb.NewHTTPClient(omdb.Options{
		BaseURL:         cfg.OMDbURL,
		APIKey:          cfg.OMDbAPIKey,
		Timeout:         time.Duration(cfg.OMDbTimeoutSecs) * time.Second,
		BreakerFailures: uint32(cfg.OMDbBreakerFailures),
		BreakerCooldown: time.Duration(cfg.OMDbBreakerCooldownSecs) * time.Second,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init omdb client")
	}

	repo := repository.New(st)
	engine := stats.New(repo)
	server := httpserver.New(cfg, st, repo, engine, lookup, logger)

	sup := supervisor.New("movie-journal", supervisor.Config{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}, logger)
	sup.Add(supervisor.Func{Name: "http-server", Run: server.Start})
	sup.Add(supervisor.Ticker("pool-metrics", poolMetricsInterval, func(context.Context) {
		metrics.RecordPool(st.Stats())
	}))

	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("supervisor stopped")
	}

	shutdown(logger, server)
}

func shutdown(logger zerolog.Logger, server *httpserver.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	logger.Info().Msg("stopped")
}

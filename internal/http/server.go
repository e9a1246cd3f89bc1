// Package httpserver exposes the movie journal over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movie-journal/internal/config"
	"github.com/Clark-Hu/movie-journal/internal/metrics"
	"github.com/Clark-Hu/movie-journal/internal/omdb"
	"github.com/Clark-Hu/movie-journal/internal/repository"
	"github.com/Clark-Hu/movie-journal/internal/stats"
	"github.com/Clark-Hu/movie-journal/internal/store"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     *repository.Repository
	engine   *stats.Engine
	lookup   omdb.Client
	logger   zerolog.Logger
	validate *validator.Validate
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, engine *stats.Engine, lookup omdb.Client, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		engine:   engine,
		lookup:   lookup,
		logger:   logger.With().Str("component", "http").Logger(),
		validate: newValidator(),
		router:   chi.NewRouter(),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.accessLog)
	s.router.Use(instrument)
	s.router.Use(middleware.Recoverer)
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", userHeader},
			MaxAge:         300,
		}))
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", s.handleOverview)
			r.Get("/wishlist", s.handleWishlistOverview)
			r.Get("/{name}", s.handleStatistic)
		})
		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Post("/", s.handleAddHistory)
			r.Get("/{movieID}/{date}", s.handleGetHistory)
			r.Delete("/{movieID}/{date}", s.handleDeleteHistory)
		})
		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", s.handleListWishlist)
			r.Post("/", s.handleAddWishlist)
			r.Delete("/{movieID}", s.handleDeleteWishlist)
			r.Post("/{movieID}/watched", s.handleMarkWatched)
		})
		r.Get("/movies/{movieID}", s.handleGetMovie)
		r.Group(func(r chi.Router) {
			if s.cfg.SearchRateLimit > 0 {
				r.Use(httprate.Limit(s.cfg.SearchRateLimit, time.Minute, httprate.WithKeyFuncs(userRateKey)))
			}
			r.Get("/search", s.handleSearch)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	metrics.RecordPool(s.store.Stats())
	if err := s.store.HealthCheck(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("health check failed")
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unreachable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

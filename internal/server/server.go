// Package server exposes series, percentiles and chart previews over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/huangsam/gridline/core"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/render"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 60 * time.Second
	requestTimeout  = 45 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves a loaded dataset. The dataset is read-only, so handlers share it freely.
type Server struct {
	ds    *core.Dataset
	cfg   *contract.Config
	logos render.LogoSource
}

// New creates a server over ds. Requests start from a clone of cfg.
func New(ds *core.Dataset, cfg *contract.Config) *Server {
	s := &Server{ds: ds, cfg: cfg}
	if cfg.Logos {
		s.logos = render.NewHTTPLogoSource(cfg.Timeout)
	}
	return s
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/players/{player}/series", s.handleSeries)
		r.Get("/percentiles", s.handlePercentiles)
	})

	r.Route("/charts", func(r chi.Router) {
		r.Get("/static.png", s.handleStatic)
		r.Get("/static.svg", s.handleStatic)
		r.Get("/interactive.json", s.handleInteractiveJSON)
		r.Get("/interactive.html", s.handleInteractiveHTML)
	})

	return r
}

// ExecuteServe loads the dataset once and serves it until ctx is cancelled.
func ExecuteServe(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	ds, err := core.LoadDataset(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return Run(ctx, cfg.Listen, New(ds, cfg).Routes())
}

// Run serves handler on addr and shuts down gracefully when ctx is done.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "🌐 Serving charts on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(os.Stderr, "Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Package server exposes the synthesis pipeline and dataset registry over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/datasets            generate (body: synth.Request as JSON)
//	GET    /v1/datasets            list summaries
//	GET    /v1/datasets/{name}     export (?format=json|csv, default json)
//	DELETE /v1/datasets/{name}
//	POST   /v1/matrices            build a target correlation matrix
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/makecases/synth"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxBodyBytes      = 1 << 20
)

// Server serves one pipeline.
type Server struct {
	pipeline *synth.Pipeline
	logger   *slog.Logger
	origins  []string
}

// New returns a Server. A nil logger discards output; empty origins allow any origin.
func New(p *synth.Pipeline, logger *slog.Logger, origins []string) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{pipeline: p, logger: logger, origins: origins}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}),
	)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/datasets", s.createDataset)
		r.Get("/datasets", s.listDatasets)
		r.Get("/datasets/{name}", s.getDataset)
		r.Delete("/datasets/{name}", s.deleteDataset)
		r.Post("/matrices", s.buildMatrix)
	})
}

// Serve listens on addr and blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info("starting server", "addr", addr)

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

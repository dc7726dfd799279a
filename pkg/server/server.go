// Package server exposes the rendering engine over HTTP.
//
// Routes:
//
//	POST /v1/render   multipart: background (file), title, body, style (JSON), patch (JSON) → image/png
//	POST /v1/suggest  multipart: background (file), title, body → style JSON
//	GET  /healthz     → {"status": "ok", "version": "..."}
//
// Errors are JSON objects {"code": "...", "message": "..."}. Bad input,
// including undecodable backgrounds, maps to 400; everything else to 500.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/slidetype/pkg/pipeline"
	"github.com/matzehuels/slidetype/pkg/style"
)

// DefaultMaxUpload is the multipart size limit when none is configured.
const DefaultMaxUpload = 20 << 20

const (
	headerRequestID = "X-Request-ID"
	headerCache     = "X-Cache"
	shutdownTimeout = 10 * time.Second
)

// Server serves render and suggest requests through a pipeline runner.
type Server struct {
	runner    *pipeline.Runner
	logger    *log.Logger
	maxUpload int64
	base      style.TextStyle
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxUpload limits the size of multipart request bodies in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

// WithBaseStyle sets the style that request styles are decoded on top of.
func WithBaseStyle(st style.TextStyle) Option {
	return func(s *Server) { s.base = st }
}

// New creates a server rendering through r.
func New(r *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:    r,
		logger:    log.Default(),
		maxUpload: DefaultMaxUpload,
		base:      style.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/render", s.handleRender)
		r.Post("/suggest", s.handleSuggest)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Package server exposes routing, rendering, diagram storage and editing
// sessions over HTTP.
//
// # Endpoints
//
//	GET    /api/health
//	POST   /api/route                   route a posted diagram
//	POST   /api/render?format=svg       route and render a posted diagram
//	GET    /api/diagrams                list stored diagrams
//	PUT    /api/diagrams/{id}           store a diagram
//	GET    /api/diagrams/{id}
//	DELETE /api/diagrams/{id}
//	POST   /api/diagrams/{id}/route     route a stored diagram
//	POST   /api/sessions                open an editing session
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	POST   /api/sessions/{id}/moves     move a node and re-route
//	POST   /api/sessions/{id}/save      write the session's diagram back to the store
//
// Responses are JSON unless the request sends `Accept: application/msgpack`.
// Errors carry the coded error's code; a move whose pass was overtaken by a
// newer move answers 409 with code SUPERSEDED.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/awscfgdiagram/orthoroute/pkg/pipeline"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
	"github.com/awscfgdiagram/orthoroute/pkg/session"
	"github.com/awscfgdiagram/orthoroute/pkg/store"
)

// Defaults for unset Config fields.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultReadTimeout  = 30 * time.Second
	DefaultMaxBodyBytes = 8 << 20

	sessionSweepInterval = 5 * time.Minute
)

// Config wires the server's dependencies. Nil dependencies get in-memory
// defaults.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	MaxBodyBytes int64

	Routing  route.Options
	Runner   *pipeline.Runner
	Store    store.Store
	Sessions *session.Manager
	Logger   *log.Logger
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	c.Routing.SetDefaults()
	if c.Runner == nil {
		c.Runner = pipeline.NewRunner(nil, nil, c.Logger)
	}
	if c.Store == nil {
		c.Store = store.NewMemoryStore()
	}
	if c.Sessions == nil {
		c.Sessions = session.NewManager(session.NewMemoryStore(), route.New(c.Routing, c.Logger), c.Logger)
	}
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New creates a server.
func New(cfg Config) *Server {
	cfg.setDefaults()
	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
	}

	go s.sweepSessions(ctx)

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.cfg.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweepSessions(ctx context.Context) {
	t := time.NewTicker(sessionSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.cfg.Sessions.Cleanup(ctx); err != nil {
				s.cfg.Logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}

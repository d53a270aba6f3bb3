// Package server is the HTTP front end of nodecanvas.
//
// A Server owns one canvas and its engine. Every request that touches the
// canvas runs under a single mutex, which stands in for the single
// interactive thread the graph and engine expect. After each mutation the
// canvas is saved to the session store, and [New] restores it from there on
// startup.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/engine"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

// Options configures a Server.
type Options struct {
	// Sessions persists the canvas between restarts. Nil disables
	// persistence.
	Sessions session.Store

	// SessionID is the key the canvas is saved under. Defaults to "server".
	SessionID string

	// SessionTTL is the lifetime of the saved session; zero never expires.
	SessionTTL time.Duration

	Logger *log.Logger
}

// Server serves one canvas over HTTP.
type Server struct {
	mu      sync.Mutex
	catalog *canvas.Catalog
	engine  *engine.Engine
	sess    *session.Session

	sessions  session.Store
	sessionID string
	ttl       time.Duration
	logger    *log.Logger
}

// New creates a server for g. If g is nil, the canvas is restored from the
// session store, or a new empty canvas is started when there is none. The
// canvas is fully recalculated before New returns.
func New(ctx context.Context, cat *canvas.Catalog, g *canvas.Graph, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SessionID == "" {
		opts.SessionID = "server"
	}
	s := &Server{
		catalog:   cat,
		sessions:  opts.Sessions,
		sessionID: opts.SessionID,
		ttl:       opts.SessionTTL,
		logger:    opts.Logger,
	}

	if g == nil && s.sessions != nil {
		sess, err := s.sessions.Get(ctx, s.sessionID)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			if g, err = sess.Restore(cat); err != nil {
				return nil, err
			}
			s.sess = sess
			s.logger.Info("restored session", "id", s.sessionID, "nodes", g.Len())
		}
	}
	if g == nil {
		g = canvas.New("untitled", cat.Registry())
	}
	s.engine = engine.New(g, s.logger)

	report, err := s.engine.RecalculateAll(ctx)
	if err != nil {
		return nil, err
	}
	if !report.OK() {
		s.logger.Warn("canvas loaded with failures", "failed", len(report.Failed), "skipped", len(report.Skipped))
	}
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Graph returns the served canvas. Callers must not mutate it while the
// server is handling requests.
func (s *Server) Graph() *canvas.Graph { return s.engine.Graph() }

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/types", s.handleTypes)
	r.Get("/kinds", s.handleKinds)
	r.Get("/canvas", s.handleCanvas)

	r.Post("/recalculate", s.handleRecalculateAll)
	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", s.handleAddNode)
		r.Delete("/{id}", s.handleRemoveNode)
		r.Put("/{id}/fields/{name}", s.handleSetField)
		r.Post("/{id}/recalculate", s.handleRecalculateNode)
	})
	r.Post("/connections", s.handleConnect)
	r.Delete("/connections", s.handleDisconnect)
	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// save writes the canvas to the session store. Called with mu held.
func (s *Server) save(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}
	g := s.engine.Graph()
	if s.sess == nil {
		sess, err := session.New(g, s.ttl)
		if err != nil {
			return err
		}
		s.sess = sess
	}
	s.sess.ID = s.sessionID
	s.sess.Update(g)
	if s.ttl > 0 {
		s.sess.ExpiresAt = time.Now().Add(s.ttl)
	}
	return s.sessions.Set(ctx, s.sess)
}

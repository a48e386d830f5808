// Package server exposes grid sessions over a JSON HTTP API.
//
// A browser editor creates a session, mutates it with small requests
// (resize, select, assign image, pan/zoom) and finally asks for an export.
// Every mutation returns the values the editor needs to redraw, so the
// client never re-derives geometry or transforms itself.
//
// Routes:
//
//	POST   /api/sessions                    create a session
//	GET    /api/sessions/{id}               read a session
//	DELETE /api/sessions/{id}               delete a session
//	POST   /api/sessions/{id}/resize        change the dimension
//	PUT    /api/sessions/{id}/settings      change gap and background
//	PUT    /api/sessions/{id}/active        select a cell
//	DELETE /api/sessions/{id}/active        clear the selection
//	POST   /api/sessions/{id}/image         assign an image to the active cell
//	PATCH  /api/sessions/{id}/transform     pan/zoom the active cell
//	GET    /api/sessions/{id}/cells/{index} read one cell
//	POST   /api/sessions/{id}/export        render to PNG (?viewport=W)
//	GET    /healthz                         liveness
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/pipeline"
	"github.com/matzehuels/gridstudio/pkg/store"
)

// DefaultMaxBodyBytes bounds request bodies. Data URIs arrive inline, so
// the limit is generous.
const DefaultMaxBodyBytes = 32 << 20

// DefaultMaxDimension caps the grid size API clients may request. A 16×16
// export is about 7000 pixels square.
const DefaultMaxDimension = 16

// Options configures a Server.
type Options struct {
	// Store persists sessions. Defaults to a MemoryStore.
	Store store.Store

	// Runner renders exports. Defaults to an uncached runner.
	Runner *pipeline.Runner

	// Render holds export defaults; requests may override the viewport.
	Render pipeline.Options

	// Grid is the configuration of newly created sessions.
	Grid grid.Config

	MaxBodyBytes int64

	// MaxDimension caps the grid size of created and resized sessions.
	MaxDimension int

	Logger *log.Logger
}

// Server serves the session API.
type Server struct {
	store        store.Store
	runner       *pipeline.Runner
	render       pipeline.Options
	grid         grid.Config
	maxBodyBytes int64
	maxDimension int
	logger       *log.Logger
	router       chi.Router

	// mu serializes read-modify-write cycles against the store.
	mu sync.Mutex
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Grid == (grid.Config{}) {
		opts.Grid = grid.DefaultConfig()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}

	s := &Server{
		store:        opts.Store,
		runner:       opts.Runner,
		render:       opts.Render,
		grid:         opts.Grid,
		maxBodyBytes: opts.MaxBodyBytes,
		maxDimension: opts.MaxDimension,
		logger:       opts.Logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/resize", s.handleResize)
			r.Put("/settings", s.handleSettings)
			r.Put("/active", s.handleSelect)
			r.Delete("/active", s.handleClearSelection)
			r.Post("/image", s.handleImage)
			r.Patch("/transform", s.handleTransform)
			r.Get("/cells/{index}", s.handleCell)
			r.Post("/export", s.handleExport)
		})
	})

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the store and the runner's cache.
func (s *Server) Close() error {
	return errors.Join(s.store.Close(), s.runner.Close())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe runs handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, readTimeout, writeTimeout time.Duration, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

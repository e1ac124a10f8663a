// Package api serves a built gem index over HTTP.
//
// Routes:
//
//	GET /healthz                          liveness and index size
//	GET /gems?q=rack                      gem names with entry counts
//	GET /gems/{name}                      all entries of a gem
//	GET /gems/{name}/versions/{version}   one entry; raw versions are coerced
//	GET /index                            the full index document
//
// Every response carries an X-Request-ID header, reusing the caller's value
// when present.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	gemerrors "github.com/matzehuels/gemindex/pkg/errors"
	"github.com/matzehuels/gemindex/pkg/index"
)

const shutdownTimeout = 10 * time.Second

// Server exposes one immutable index.
type Server struct {
	idx    *index.Index
	logger *log.Logger
	router chi.Router
}

// New creates a server for idx. A nil logger falls back to log.Default().
func New(idx *index.Index, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{idx: idx, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/index", s.handleIndex)
	r.Route("/gems", func(r chi.Router) {
		r.Get("/", s.handleGems)
		r.Get("/{name}", s.handleGem)
		r.Get("/{name}/versions/{version}", s.handleVersion)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, gemerrors.New(gemerrors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving index", "addr", addr, "gems", s.idx.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
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
			"request_id", w.Header().Get(RequestIDHeader),
			"duration", time.Since(start))
	})
}

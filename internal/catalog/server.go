package catalog

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server exposes a MemorySource over HTTP.
type Server struct {
	books  *library.MemorySource
	logger *logger.Logger
}

// NewServer returns a catalog server reading from books.
func NewServer(books *library.MemorySource, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	log.Info().Msg("catalog handler created")
	return &Server{books: books, logger: log}
}

// Routes builds the chi router for the catalog API.
func (s *Server) Routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(s.withLogger)
	router.Use(s.withLogging)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/clients", s.clients)
		r.Get("/clients/{clientID}/books", s.clientBooks)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, r, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// Run listens on addr and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("catalog listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info().Msg("catalog stopped")
	return nil
}

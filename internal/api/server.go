package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"reelsmith/internal/config"
	"reelsmith/internal/content"
	"reelsmith/internal/logging"
	"reelsmith/internal/metrics"
)

// Runner executes one generation run.
type Runner interface {
	Run(ctx context.Context) (content.Record, error)
}

// Dependencies are the collaborators the HTTP surface serves.
type Dependencies struct {
	Runner  Runner
	Records content.Store
	Metrics *metrics.Metrics
	// ObjectsDir is served under /objects/ when non-empty.
	ObjectsDir string
}

// Server hosts the HTTP API.
type Server struct {
	bind          string
	allowedOrigin string
	auth          *TokenValidator
	deps          Dependencies
	logger        *slog.Logger

	mu       sync.Mutex
	lifetime context.Context
	listener net.Listener
	server   *http.Server
}

// NewServer builds the router for cfg. It does not listen until Serve.
func NewServer(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("api: config required")
	}
	if deps.Runner == nil || deps.Records == nil {
		return nil, errors.New("api: runner and record store are required")
	}
	s := &Server{
		bind:          strings.TrimSpace(cfg.API.Bind),
		allowedOrigin: strings.TrimSpace(cfg.API.AllowedOrigin),
		deps:          deps,
		logger:        logging.NewComponentLogger(logger, "api"),
		lifetime:      context.Background(),
	}
	if secret := strings.TrimSpace(cfg.API.JWTSecret); secret != "" {
		s.auth = NewTokenValidator(secret)
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestContext, s.requestLogger, middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.cors)
		r.Get("/videos", s.handleVideos)
		r.Group(func(r chi.Router) {
			if s.auth != nil {
				r.Use(s.requireToken)
			}
			r.Get("/generate", s.handleGenerate)
			r.Post("/generate", s.handleGenerate)
		})
	})

	if dir := strings.TrimSpace(s.deps.ObjectsDir); dir != "" {
		r.Handle("/objects/*", http.StripPrefix("/objects/", http.FileServer(http.Dir(dir))))
	}
	return r
}

// Serve listens on the configured bind address and blocks until ctx is
// done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.lifetime = ctx
	s.mu.Unlock()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("auth_enabled", s.auth != nil),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the bound listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifetime
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, kind string) {
	s.writeJSON(w, status, ErrorResponse{Error: message, Kind: kind})
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/ainavigator/backend/pkg/config"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// Server owns the HTTP listener for the dashboard API
// ⭐ SSOT: HTTP server timeouts are set here only
type Server struct {
	srv    *http.Server
	env    string
	logger *logger.Logger
}

// New builds a server around a router. Nothing listens until Start.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			// bounds reading a multipart upload
			ReadTimeout:  30 * time.Second,
			WriteTimeout: writeTimeout(cfg),
			IdleTimeout:  60 * time.Second,
		},
		env:    cfg.Env,
		logger: log,
	}
}

// Start blocks serving requests until Shutdown
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"addr":          s.srv.Addr,
		"env":           s.env,
		"write_timeout": s.srv.WriteTimeout.String(),
	}).Info("API server listening")

	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serve %s: %w", s.srv.Addr, err)
}

// Shutdown stops accepting connections and drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Draining API server")

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// writeTimeout leaves room for an LLM round trip on /api/gpt
func writeTimeout(cfg *config.Config) time.Duration {
	timeout := 15 * time.Second
	if llm := cfg.OpenAI.Timeout + 5*time.Second; llm > timeout {
		timeout = llm
	}
	return timeout
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

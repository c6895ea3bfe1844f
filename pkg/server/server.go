package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"mercator-hq/minerva/pkg/config"
	"mercator-hq/minerva/pkg/decision"
	"mercator-hq/minerva/pkg/orchestrator"
)

// DecisionReader is the read side of decision storage the API exposes.
// decision.Storage implements it.
type DecisionReader interface {
	GetByID(ctx context.Context, id string) (*decision.Record, error)
	ListByCase(ctx context.Context, caseID string, limit int) ([]*decision.Record, error)
}

// RuleSetCounter reports how many rule sets a source currently serves.
// The readiness probe fails until at least one is loaded.
type RuleSetCounter interface {
	Len() int
}

// Options carries the server's optional collaborators. Each nil field
// disables the routes or checks that depend on it.
type Options struct {
	// Decisions serves the decision read routes.
	Decisions DecisionReader

	// RuleSets drives the readiness probe.
	RuleSets RuleSetCounter

	// Metrics serves the metrics route at MetricsPath.
	Metrics http.Handler

	// MetricsPath defaults to "/metrics".
	MetricsPath string

	// Logger for server lifecycle and request logging.
	Logger *slog.Logger
}

// Server is the HTTP API server for the decisioning service.
type Server struct {
	config       *config.ServerConfig
	orchestrator *orchestrator.Orchestrator
	opts         Options
	logger       *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server around an orchestrator.
func New(cfg *config.ServerConfig, orch *orchestrator.Orchestrator, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server: config is required")
	}
	if orch == nil {
		return nil, fmt.Errorf("server: orchestrator is required")
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:       cfg,
		orchestrator: orch,
		opts:         opts,
		logger:       logger.With("component", "server"),
	}, nil
}

// Start starts the HTTP server and blocks until ctx is cancelled, Shutdown
// is called, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.mu.Unlock()

	if s.config.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			return fmt.Errorf("configuring TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"address", s.config.ListenAddress,
			"tls_enabled", s.config.TLS.Enabled,
		)
		var err error
		if s.config.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(s.config.TLS.CertFile, s.config.TLS.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
			return
		}
		errChan <- nil
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler with the full middleware chain, for
// embedding or httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/evaluations", s.handleEvaluate)
	mux.HandleFunc("POST /v1/evaluations:inline", s.handleEvaluateInline)
	if s.opts.Decisions != nil {
		mux.HandleFunc("GET /v1/decisions/{id}", s.handleGetDecision)
		mux.HandleFunc("GET /v1/cases/{case_id}/decisions", s.handleListCaseDecisions)
	}
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	if s.opts.Metrics != nil {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.Metrics)
	}

	var handler http.Handler = mux
	handler = timeoutMiddleware(s.config.RequestTimeout)(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}

// configureTLS validates the certificate material and pins TLS 1.3.
func (s *Server) configureTLS() (*tls.Config, error) {
	if s.config.TLS.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if s.config.TLS.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}
	if _, err := os.Stat(s.config.TLS.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", s.config.TLS.CertFile)
	}
	if _, err := os.Stat(s.config.TLS.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", s.config.TLS.KeyFile)
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS13,
	}, nil
}

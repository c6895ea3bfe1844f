package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/minerva/pkg/config"
	"mercator-hq/minerva/pkg/eligibility"
	"mercator-hq/minerva/pkg/eligibility/reconcile"
	"mercator-hq/minerva/pkg/facts"
	"mercator-hq/minerva/pkg/orchestrator"
	"mercator-hq/minerva/pkg/ruleset/source"
)

func newBareOrchestrator(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	resolver, err := source.NewMemorySource()
	if err != nil {
		t.Fatalf("NewMemorySource() error = %v", err)
	}
	aggregator, err := eligibility.NewAggregator(nil, nil)
	if err != nil {
		t.Fatalf("NewAggregator() error = %v", err)
	}
	policy, err := reconcile.NewPolicy(nil, nil)
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	orch, err := orchestrator.New(orchestrator.Deps{
		Resolver:   resolver,
		Facts:      facts.NewMemoryStore(),
		Aggregator: aggregator,
		Policy:     policy,
	})
	if err != nil {
		t.Fatalf("orchestrator.New() error = %v", err)
	}
	return orch
}

func TestNew_Validation(t *testing.T) {
	cfg := config.DefaultConfig()
	orch := newBareOrchestrator(t)

	if _, err := New(nil, orch, Options{}); err == nil {
		t.Error("New(nil config) expected error")
	}
	if _, err := New(&cfg.Server, nil, Options{}); err == nil {
		t.Error("New(nil orchestrator) expected error")
	}

	srv, err := New(&cfg.Server, orch, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true before Start")
	}
	if srv.Handler() == nil {
		t.Error("Handler() = nil")
	}
}

func TestStartAndShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	srv, err := New(&cfg.Server, newBareOrchestrator(t), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	// Give the listener a moment, then stop via context cancellation.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestConfigureTLS_MissingFiles(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.TLS.Enabled = true
	srv, err := New(&cfg.Server, newBareOrchestrator(t), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := srv.configureTLS(); err == nil {
		t.Error("configureTLS() with no cert file expected error")
	}

	srv.config.TLS.CertFile = filepath.Join(t.TempDir(), "missing.pem")
	srv.config.TLS.KeyFile = filepath.Join(t.TempDir(), "missing-key.pem")
	if _, err := srv.configureTLS(); err == nil {
		t.Error("configureTLS() with absent files expected error")
	}
}

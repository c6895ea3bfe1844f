package tracing

import (
	"context"
	"testing"

	"mercator-hq/minerva/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name: "disabled tracing",
			config: &config.TracingConfig{
				Enabled:     false,
				ServiceName: "test-service",
			},
			wantErr: false,
		},
		{
			name: "enabled with always sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "always",
				Endpoint:    "localhost:4317",
				Insecure:    true,
				ServiceName: "test-service",
			},
			wantErr: false,
		},
		{
			name: "enabled with never sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "never",
				Endpoint:    "localhost:4317",
				Insecure:    true,
				ServiceName: "test-service",
			},
			wantErr: false,
		},
		{
			name: "enabled with ratio sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "ratio",
				SampleRatio: 0.5,
				Endpoint:    "localhost:4317",
				Insecure:    true,
				ServiceName: "test-service",
			},
			wantErr: false,
		},
		{
			name: "invalid sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "invalid",
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
			},
			wantErr: true,
		},
		{
			name: "invalid sample ratio",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "ratio",
				SampleRatio: 1.5,
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if err == nil {
				if tracer == nil {
					t.Error("New() returned nil tracer without error")
					return
				}

				if tracer.Enabled() != tt.config.Enabled {
					t.Errorf("tracer.Enabled() = %v, want %v", tracer.Enabled(), tt.config.Enabled)
				}

				// No spans recorded, so shutdown has nothing to flush.
				if err := tracer.Shutdown(context.Background()); err != nil {
					t.Errorf("Shutdown() error = %v", err)
				}
			}
		})
	}
}

func TestTracer_Start(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx := context.Background()

	ctx, span := tracer.Start(ctx, SpanEvaluation)
	if span == nil {
		t.Error("Start() returned nil span")
	}
	span.End()

	ctx, span = tracer.Start(ctx, SpanRuleSetResolve,
		trace.WithAttributes(
			attribute.String(AttrRuleSetID, "uk-skilled-worker"),
		),
	)
	if span == nil {
		t.Error("Start() returned nil span")
	}
	span.End()

	// Nested spans
	ctx, parentSpan := tracer.Start(ctx, SpanEvaluation)
	_, childSpan := tracer.Start(ctx, SpanAggregate)
	childSpan.End()
	parentSpan.End()
}

func TestTracer_Shutdown(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{
			name:    "shutdown disabled tracer",
			enabled: false,
		},
		{
			name:    "shutdown enabled tracer",
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.TracingConfig{
				Enabled:     tt.enabled,
				ServiceName: "test-service",
			}

			if tt.enabled {
				// Never-sample so no spans queue for export against the
				// unreachable test endpoint.
				cfg.Sampler = "never"
				cfg.Endpoint = "localhost:4317"
				cfg.Insecure = true
			}

			tracer, err := New(cfg)
			if err != nil {
				t.Fatalf("Failed to create tracer: %v", err)
			}

			ctx, span := tracer.Start(context.Background(), SpanEvaluation)
			span.End()

			if err := tracer.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestSpanFromContext(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx := context.Background()

	// No span in context returns a noop span, never nil.
	span := SpanFromContext(ctx)
	if span == nil {
		t.Error("SpanFromContext() returned nil")
	}

	ctx, createdSpan := tracer.Start(ctx, SpanEvaluation)
	retrievedSpan := SpanFromContext(ctx)
	if retrievedSpan == nil {
		t.Error("SpanFromContext() returned nil")
	}
	createdSpan.End()
}

func TestContextWithSpan(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), SpanEvaluation)
	defer span.End()

	newCtx := ContextWithSpan(context.Background(), span)

	retrievedSpan := SpanFromContext(newCtx)
	if retrievedSpan == nil {
		t.Error("SpanFromContext() returned nil after ContextWithSpan()")
	}
}

func TestTraceIDAndSpanID(t *testing.T) {
	ctx := context.Background()

	if traceID := TraceID(ctx); traceID != "" {
		t.Errorf("TraceID() = %q, want empty string", traceID)
	}
	if spanID := SpanID(ctx); spanID != "" {
		t.Errorf("SpanID() = %q, want empty string", spanID)
	}
	if IsSampled(ctx) {
		t.Error("IsSampled() = true, want false with no span")
	}

	// A hand-built span context round-trips through the helpers.
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36},
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
	})
	ctx = trace.ContextWithSpanContext(ctx, sc)

	if got := TraceID(ctx); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("TraceID() = %q", got)
	}
	if got := SpanID(ctx); got != "00f067aa0ba902b7" {
		t.Errorf("SpanID() = %q", got)
	}
	if !IsSampled(ctx) {
		t.Error("IsSampled() = false for sampled span context")
	}
}

func TestSetErrorAndStatus(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), SpanEvaluation)
	defer span.End()

	// Nil error is a no-op; real errors must not panic on noop spans.
	SetError(span, nil)
	SetError(span, context.DeadlineExceeded)

	SetStatus(span, nil)
	SetStatus(span, context.DeadlineExceeded)
}

func TestAttributeHelpers(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), SpanEvaluation)
	defer span.End()

	// Verify the helpers accept noop spans without panicking.
	SetCaseAttributes(span, "case-7731", "uk-skilled-worker", "2025-04-01")
	SetCaseAttributes(span, "case-7731", "uk-skilled-worker", "")
	SetAggregationAttributes(span, "possible", 9, 12, 2)
	SetJudgmentAttributes(span, "likely", "reason-v2")
	SetJudgmentAttributes(span, "likely", "")
	SetDecisionAttributes(span, "possible", 0.62, true, true)
	SetErrorAttributes(span, nil, "ignored")
	SetErrorAttributes(span, context.DeadlineExceeded, "facts_fetch")
}

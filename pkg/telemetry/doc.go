// Package telemetry provides comprehensive observability for Minerva.
//
// # Overview
//
// The telemetry package implements structured logging, Prometheus metrics,
// and OpenTelemetry distributed tracing for the eligibility evaluation
// pipeline. It provides visibility into runtime behavior while keeping the
// overhead per evaluation low.
//
// # Components
//
//   - logging: structured slog logging with PII redaction and context identifiers
//   - metrics: Prometheus metrics collection for evaluations, judgments, and reviews
//   - tracing: OpenTelemetry distributed tracing with W3C context propagation
//
// # Usage
//
//	// Structured logging
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	logger.Info("evaluation complete", "case_id", caseID, "outcome", outcome)
//
//	// Metrics
//	collector, err := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordEvaluation("uk-skilled-worker", "likely", duration)
//
//	// Tracing
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	ctx, span := tracer.Start(ctx, tracing.SpanEvaluation)
//	defer span.End()
//
// # PII Protection
//
// Applicant data flows through the evaluation pipeline, so log redaction is
// on by default:
//
//   - Passport numbers: X1234567 → X*******
//   - Emails: applicant@example.com → a***@example.com
//   - Sensitive fact keys (national_id, date_of_birth, ...): value → ***
//
// See pkg/telemetry/logging for details.
package telemetry

// Package tracing provides OpenTelemetry distributed tracing for Minerva.
//
// # Overview
//
// The tracing package implements W3C Trace Context propagation, span creation,
// and trace export to an OTLP collector over gRPC. It gives visibility into the
// evaluation pipeline: rule set resolution, fact retrieval, requirement
// aggregation, AI judgment calls, reconciliation, and decision persistence.
//
// # Trace Context Propagation
//
// The package implements W3C Trace Context (https://www.w3.org/TR/trace-context/)
// for propagating trace context across HTTP boundaries:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	tracestate: congo=t61rcWkgMzE
//
// Inbound requests are joined via Extract or HTTPMiddleware; outbound calls to
// the judgment service carry the active context via Inject.
//
// # Sampling Strategies
//
// Three sampling strategies are supported, all parent-based so sampled callers
// keep their traces intact:
//   - always: sample every trace (development, debugging)
//   - never: sample nothing
//   - ratio: sample a fraction of traces (production)
//
// # Usage
//
//	cfg := &config.TracingConfig{
//	    Enabled:     true,
//	    Sampler:     "ratio",
//	    SampleRatio: 0.1,
//	    Endpoint:    "localhost:4317",
//	    Insecure:    true,
//	    ServiceName: "minerva",
//	}
//	tracer, err := tracing.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanEvaluation)
//	defer span.End()
//
//	tracing.SetCaseAttributes(span, caseID, rulesetID, rulesetVersion)
//
// When tracing is disabled the package returns a noop tracer: Start still
// produces valid (non-recording) spans, so instrumented code does not need to
// branch on whether tracing is on.
//
// # Span Names
//
// Pipeline stages use the span name constants defined in this package
// (SpanEvaluation, SpanRuleSetResolve, SpanFactsFetch, SpanAggregate,
// SpanJudgment, SpanReconcile, SpanPersist) so traces read the same across
// deployments. Attributes live under the minerva.* namespace.
package tracing

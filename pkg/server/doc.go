// Package server provides the HTTP API surface for the eligibility
// decisioning service.
//
// Routes:
//
//	POST /v1/evaluations          evaluate a stored case against a rule set
//	POST /v1/evaluations:inline   evaluate ad-hoc facts (what-if tooling)
//	GET  /v1/decisions/{id}       read one persisted decision
//	GET  /v1/cases/{id}/decisions recent decisions for a case, newest first
//	GET  /health                  liveness
//	GET  /ready                   readiness (rule sets loaded)
//	GET  /metrics                 Prometheus, when metrics are enabled
//
// Every request passes through the middleware chain: panic recovery,
// request-id assignment, structured request logging, and a per-request
// timeout. The server shuts down gracefully and supports optional TLS.
package server

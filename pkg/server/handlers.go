package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mercator-hq/minerva/pkg/decision"
	"mercator-hq/minerva/pkg/eligibility"
	"mercator-hq/minerva/pkg/facts"
	"mercator-hq/minerva/pkg/orchestrator"
	"mercator-hq/minerva/pkg/rulelogic"
	"mercator-hq/minerva/pkg/ruleset"
	"mercator-hq/minerva/pkg/telemetry/logging"
)

// Request bodies cap at 1 MiB: evaluation requests are identifiers plus,
// at most, one case's facts.
const maxRequestBody = 1 << 20

type evaluateRequest struct {
	CaseID    string `json:"case_id"`
	RuleSetID string `json:"ruleset_id"`
}

type evaluateInlineRequest struct {
	RuleSetID string            `json:"ruleset_id"`
	Facts     rulelogic.FactSet `json:"facts"`
}

// evaluationResponse is the API shape of one completed evaluation.
type evaluationResponse struct {
	DecisionID          string                            `json:"decision_id,omitempty"`
	CaseID              string                            `json:"case_id,omitempty"`
	RuleSetID           string                            `json:"ruleset_id"`
	RuleSetVersion      string                            `json:"ruleset_version"`
	FinalOutcome        eligibility.Outcome               `json:"final_outcome"`
	Confidence          float64                           `json:"confidence"`
	ConflictDetected    bool                              `json:"conflict_detected"`
	RequiresHumanReview bool                              `json:"requires_human_review"`
	ReasoningSummary    string                            `json:"reasoning_summary"`
	AIOutcome           eligibility.Outcome               `json:"ai_outcome,omitempty"`
	RuleEvaluation      *eligibility.RuleEvaluationResult `json:"rule_evaluation"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newEvaluationResponse(result *orchestrator.Result) *evaluationResponse {
	resp := &evaluationResponse{
		CaseID:              result.CaseID,
		RuleSetID:           result.RuleSet.ID,
		RuleSetVersion:      result.RuleSet.Version,
		FinalOutcome:        result.Decision.FinalOutcome,
		Confidence:          result.Decision.Confidence,
		ConflictDetected:    result.Decision.ConflictDetected,
		RequiresHumanReview: result.Decision.RequiresHumanReview,
		ReasoningSummary:    result.Decision.ReasoningSummary,
		RuleEvaluation:      result.Rule,
	}
	if result.Judgment != nil {
		resp.AIOutcome = result.Judgment.Outcome
	}
	if result.Record != nil {
		resp.DecisionID = result.Record.ID
	}
	return resp
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CaseID == "" || req.RuleSetID == "" {
		writeError(w, http.StatusBadRequest, "case_id and ruleset_id are required")
		return
	}

	ctx := logging.WithCaseID(r.Context(), req.CaseID)
	result, err := s.orchestrator.EvaluateCase(ctx, req.CaseID, req.RuleSetID)
	if err != nil {
		s.writeEvaluationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEvaluationResponse(result))
}

func (s *Server) handleEvaluateInline(w http.ResponseWriter, r *http.Request) {
	var req evaluateInlineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RuleSetID == "" {
		writeError(w, http.StatusBadRequest, "ruleset_id is required")
		return
	}
	if req.Facts == nil {
		writeError(w, http.StatusBadRequest, "facts object is required")
		return
	}

	result, err := s.orchestrator.EvaluateInline(r.Context(), req.RuleSetID, req.Facts)
	if err != nil {
		s.writeEvaluationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEvaluationResponse(result))
}

// writeEvaluationError maps pipeline errors onto status codes: unknown
// case or rule set is 404, an empty requirement set is 422 (the case is
// not yet evaluable, not any outcome tier), everything else is 500.
func (s *Server) writeEvaluationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, facts.ErrCaseNotFound), errors.Is(err, ruleset.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, eligibility.ErrNoRequirements):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "evaluation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "evaluation failed")
	}
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := s.opts.Decisions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, decision.ErrNotFound) {
			writeError(w, http.StatusNotFound, "decision not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "decision lookup failed", "decision_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "decision lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListCaseDecisions(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("case_id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.opts.Decisions.ListByCase(r.Context(), caseID, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "decision list failed", "case_id", caseID, "error", err)
		writeError(w, http.StatusInternalServerError, "decision lookup failed")
		return
	}
	if records == nil {
		records = []*decision.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"case_id":   caseID,
		"decisions": records,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready once at least one rule set is loaded. Without
// a rule-set source the probe degrades to liveness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.RuleSets != nil && s.opts.RuleSets.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "no rule sets loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// decodeJSON reads a bounded JSON body into dst, writing a 400 and
// returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Debug("writing response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

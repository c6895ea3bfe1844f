// Package collabtest provides in-process stand-ins for the collaborator
// services Minerva calls over HTTP: the reasoning service that issues
// narrative judgments and the review service that queues cases for human
// reviewers. Tests point the real clients at these stubs to exercise wire
// behavior without a network.
package collabtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// JudgmentServer is an httptest-backed stand-in for the reasoning service.
// It answers POST /assessments with a canned narrative and records every
// request body it receives.
type JudgmentServer struct {
	server *httptest.Server

	mu         sync.Mutex
	assessment string
	model      string
	statusCode int
	failures   int
	requests   []AssessmentRequest
}

// AssessmentRequest is the decoded body of one call to the stub. The shape
// mirrors what the judgment client sends so tests can assert on it.
type AssessmentRequest struct {
	CaseID  string `json:"case_id"`
	RuleSet struct {
		ID           string `json:"id"`
		Version      string `json:"version"`
		Jurisdiction string `json:"jurisdiction"`
		Title        string `json:"title"`
		Requirements []struct {
			Code        string `json:"code"`
			Description string `json:"description"`
			Mandatory   bool   `json:"mandatory"`
		} `json:"requirements"`
	} `json:"ruleset"`
	Facts map[string]any `json:"facts"`
	Model string         `json:"model"`
}

// NewJudgmentServer starts a stub reasoning service that replies with the
// given narrative. Callers must Close it.
func NewJudgmentServer(assessment string) *JudgmentServer {
	js := &JudgmentServer{
		assessment: assessment,
		model:      "stub-reasoner-1",
		statusCode: http.StatusOK,
	}
	js.server = httptest.NewServer(http.HandlerFunc(js.handle))
	return js
}

// URL returns the stub's base URL for client configuration.
func (js *JudgmentServer) URL() string {
	return js.server.URL
}

// Close shuts the stub down.
func (js *JudgmentServer) Close() {
	js.server.Close()
}

// SetAssessment changes the narrative returned to subsequent calls.
func (js *JudgmentServer) SetAssessment(assessment string) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.assessment = assessment
}

// SetStatusCode makes the stub answer every call with the given status
// instead of a judgment. Use it to simulate a degraded reasoning service.
func (js *JudgmentServer) SetStatusCode(code int) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.statusCode = code
}

// FailNext makes the next n calls answer 503 before recovering. It lets
// tests exercise the client's retry path.
func (js *JudgmentServer) FailNext(n int) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.failures = n
}

// Requests returns a copy of every assessment request received so far.
func (js *JudgmentServer) Requests() []AssessmentRequest {
	js.mu.Lock()
	defer js.mu.Unlock()
	out := make([]AssessmentRequest, len(js.requests))
	copy(out, js.requests)
	return out
}

func (js *JudgmentServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/assessments" {
		http.NotFound(w, r)
		return
	}

	var req AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed assessment request", http.StatusBadRequest)
		return
	}

	js.mu.Lock()
	js.requests = append(js.requests, req)
	if js.failures > 0 {
		js.failures--
		js.mu.Unlock()
		http.Error(w, "reasoning service unavailable", http.StatusServiceUnavailable)
		return
	}
	assessment := js.assessment
	model := js.model
	status := js.statusCode
	js.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "reasoning service error", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"assessment": assessment,
		"model":      model,
	})
}

// ReviewServer is an httptest-backed stand-in for the review service. It
// answers POST /reviews with a generated review ID and records every
// escalation it receives.
type ReviewServer struct {
	server *httptest.Server

	mu         sync.Mutex
	nextID     int
	statusCode int
	requests   []ReviewRequest
}

// ReviewRequest is the decoded body of one review creation call.
type ReviewRequest struct {
	CaseID           string `json:"case_id"`
	ReasoningSummary string `json:"reasoning_summary"`
	ConflictDetected bool   `json:"conflict_detected"`
}

// NewReviewServer starts a stub review service. Callers must Close it.
func NewReviewServer() *ReviewServer {
	rs := &ReviewServer{statusCode: http.StatusCreated}
	rs.server = httptest.NewServer(http.HandlerFunc(rs.handle))
	return rs
}

// URL returns the stub's base URL for client configuration.
func (rs *ReviewServer) URL() string {
	return rs.server.URL
}

// Close shuts the stub down.
func (rs *ReviewServer) Close() {
	rs.server.Close()
}

// SetStatusCode makes the stub answer every call with the given status
// instead of creating a review.
func (rs *ReviewServer) SetStatusCode(code int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.statusCode = code
}

// Requests returns a copy of every review request received so far.
func (rs *ReviewServer) Requests() []ReviewRequest {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]ReviewRequest, len(rs.requests))
	copy(out, rs.requests)
	return out
}

func (rs *ReviewServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/reviews" {
		http.NotFound(w, r)
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed review request", http.StatusBadRequest)
		return
	}

	rs.mu.Lock()
	rs.requests = append(rs.requests, req)
	status := rs.statusCode
	rs.nextID++
	id := rs.nextID
	rs.mu.Unlock()

	if status >= 400 {
		http.Error(w, "review service error", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"review_id": reviewID(id),
	})
}

func reviewID(n int) string {
	const digits = "0123456789"
	buf := []byte("rev-000000")
	for i := len(buf) - 1; n > 0 && i >= 4; i-- {
		buf[i] = digits[n%10]
		n /= 10
	}
	return string(buf)
}

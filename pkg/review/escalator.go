package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Escalation asks for a human review of one decision.
type Escalation struct {
	// DecisionID is the persisted decision the review belongs to. When set,
	// the accepted review identifier is linked back to that record.
	DecisionID string

	// CaseID identifies the case under review.
	CaseID string

	// ReasoningSummary explains why the case needs review.
	ReasoningSummary string

	// ConflictDetected reports whether the escalation came from a rule/AI
	// disagreement.
	ConflictDetected bool
}

// ReviewCreator creates reviews in the external review service.
// *Client implements it.
type ReviewCreator interface {
	CreateReview(ctx context.Context, req *CreateRequest) (string, error)
}

// ReviewIDAttacher links an accepted review identifier back to a persisted
// decision. decision.Storage implements it.
type ReviewIDAttacher interface {
	AttachReviewID(ctx context.Context, id, reviewID string) error
}

// EscalatorConfig contains configuration for the escalator.
type EscalatorConfig struct {
	// QueueSize is the escalation queue capacity. Escalations submitted
	// while the queue is full are dropped.
	// Default: 128
	QueueSize int

	// Workers is the number of goroutines creating reviews.
	// Default: 2
	Workers int

	// StopTimeout bounds how long Stop waits for queued escalations to
	// finish before aborting in-flight review calls.
	// Default: 5 seconds
	StopTimeout time.Duration
}

// DefaultEscalatorConfig returns an EscalatorConfig with sensible defaults.
func DefaultEscalatorConfig() *EscalatorConfig {
	return &EscalatorConfig{
		QueueSize:   128,
		Workers:     2,
		StopTimeout: 5 * time.Second,
	}
}

// Escalator queues escalations and creates reviews in the background so the
// evaluation path never blocks on the review service.
type Escalator struct {
	creator  ReviewCreator
	attacher ReviewIDAttacher
	config   *EscalatorConfig
	logger   *slog.Logger
	obs      Observer

	queue chan Escalation
	done  chan struct{}
	wg    sync.WaitGroup

	// stopCtx covers review calls made by workers. Stop cancels it when
	// draining exceeds StopTimeout.
	stopCtx    context.Context
	stopCancel context.CancelFunc

	stopOnce sync.Once
	stopErr  error
}

// NewEscalator creates an escalator and starts its workers.
//
// The attacher may be nil, in which case accepted review identifiers are
// logged but not linked back to decision records. A nil observer disables
// event reporting.
func NewEscalator(creator ReviewCreator, attacher ReviewIDAttacher, config *EscalatorConfig, logger *slog.Logger, obs Observer) (*Escalator, error) {
	if creator == nil {
		return nil, fmt.Errorf("escalator: review creator is required")
	}
	if config == nil {
		config = DefaultEscalatorConfig()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 128
	}
	if config.Workers <= 0 {
		config.Workers = 2
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if obs == nil {
		obs = NopObserver{}
	}

	stopCtx, stopCancel := context.WithCancel(context.Background())

	e := &Escalator{
		creator:    creator,
		attacher:   attacher,
		config:     config,
		logger:     logger.With("component", "review.escalator"),
		obs:        obs,
		queue:      make(chan Escalation, config.QueueSize),
		done:       make(chan struct{}),
		stopCtx:    stopCtx,
		stopCancel: stopCancel,
	}

	e.wg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go e.worker()
	}

	return e, nil
}

// Escalate submits an escalation for background processing. It never blocks:
// when the queue is full the escalation is dropped and ErrQueueFull returned.
// Callers treat failures here as recoverable; the decision already stands.
func (e *Escalator) Escalate(esc Escalation) error {
	select {
	case <-e.done:
		e.obs.ReviewDropped()
		return ErrStopped
	default:
	}

	select {
	case e.queue <- esc:
		e.obs.ReviewRequested()
		e.obs.QueueDepth(len(e.queue))
		return nil
	default:
		e.logger.Warn("escalation queue full, dropping escalation",
			"case_id", esc.CaseID,
			"decision_id", esc.DecisionID,
			"queue_size", e.config.QueueSize,
		)
		e.obs.ReviewDropped()
		return ErrQueueFull
	}
}

// Stop drains queued escalations and stops the workers. Escalations that do
// not finish within StopTimeout are aborted.
func (e *Escalator) Stop() error {
	e.stopOnce.Do(func() {
		close(e.done)

		finished := make(chan struct{})
		go func() {
			e.wg.Wait()
			close(finished)
		}()

		select {
		case <-finished:
		case <-time.After(e.config.StopTimeout):
			e.stopCancel()
			<-finished
			e.stopErr = fmt.Errorf("escalator stop timed out after %s, aborted in-flight reviews", e.config.StopTimeout)
		}
		e.stopCancel()
	})
	return e.stopErr
}

// worker processes escalations until the escalator stops, then drains
// whatever is still queued.
func (e *Escalator) worker() {
	defer e.wg.Done()

	for {
		select {
		case esc := <-e.queue:
			e.obs.QueueDepth(len(e.queue))
			e.process(esc)
		case <-e.done:
			for {
				select {
				case esc := <-e.queue:
					e.obs.QueueDepth(len(e.queue))
					e.process(esc)
				default:
					return
				}
			}
		}
	}
}

// process creates one review. Failures are logged and swallowed: a missing
// review never invalidates the decision that asked for it.
func (e *Escalator) process(esc Escalation) {
	reviewID, err := e.creator.CreateReview(e.stopCtx, &CreateRequest{
		CaseID:           esc.CaseID,
		ReasoningSummary: esc.ReasoningSummary,
		ConflictDetected: esc.ConflictDetected,
	})
	if err != nil {
		e.logger.Error("review creation failed",
			"case_id", esc.CaseID,
			"decision_id", esc.DecisionID,
			"conflict_detected", esc.ConflictDetected,
			"error", err,
		)
		e.obs.ReviewFailed(failureReason(err))
		return
	}

	e.logger.Info("review created",
		"case_id", esc.CaseID,
		"decision_id", esc.DecisionID,
		"review_id", reviewID,
	)

	if e.attacher == nil || esc.DecisionID == "" {
		return
	}
	if err := e.attacher.AttachReviewID(e.stopCtx, esc.DecisionID, reviewID); err != nil {
		e.logger.Warn("linking review to decision failed",
			"decision_id", esc.DecisionID,
			"review_id", reviewID,
			"error", err,
		)
		e.obs.ReviewFailed("attach")
	}
}

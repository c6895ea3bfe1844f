// Package review escalates decisions to the external human-review subsystem.
//
// The evaluation path never blocks on review creation: the reconciled
// decision is already computed and persisted by the time an escalation is
// queued, and a failed escalation leaves that decision valid. The package
// therefore splits into a synchronous HTTP client and an asynchronous
// escalator in front of it.
//
// # Client
//
// Client.CreateReview posts {case_id, reasoning_summary, conflict_detected}
// to the review service and returns the review identifier it assigns.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; authentication failures, rate limits and other 4xx responses are
// terminal. Every call carries an idempotency key so retries cannot create
// duplicate reviews.
//
// # Escalator
//
// The Escalator accepts escalations on a bounded queue and drains it with a
// small worker pool. When the queue is full the escalation is dropped with a
// warning rather than blocking the caller. On a successful creation the
// worker links the review identifier back to the persisted decision record.
//
//	client, err := review.NewClient(review.ClientConfig{
//	    BaseURL: "https://reviews.internal",
//	    APIKey:  os.Getenv("MINERVA_REVIEW_API_KEY"),
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	escalator := review.NewEscalator(client, storage, nil, logger, nil)
//	defer escalator.Stop()
//
//	if decided.RequiresHumanReview {
//	    err := escalator.Escalate(review.Escalation{
//	        DecisionID:       record.ID,
//	        CaseID:           record.CaseID,
//	        ReasoningSummary: record.ReasoningSummary,
//	        ConflictDetected: record.ConflictDetected,
//	    })
//	    // A full queue or a stopped escalator is reported here; the
//	    // decision itself stands either way.
//	}
package review

package review

import "errors"

// Observer receives escalator lifecycle events, typically to drive metrics.
// Callbacks run on the evaluation path and on escalator workers, so
// implementations must not block.
type Observer interface {
	// ReviewRequested is called when an escalation is accepted onto the
	// queue.
	ReviewRequested()

	// ReviewDropped is called when an escalation is rejected because the
	// queue is full or the escalator is stopping.
	ReviewDropped()

	// ReviewFailed is called when creating or linking a review fails.
	// Reason is one of "auth", "rate_limit", "parse", "service", "attach".
	ReviewFailed(reason string)

	// QueueDepth reports the escalation queue depth after it changes.
	QueueDepth(depth int)
}

// NopObserver is an Observer that ignores every event.
type NopObserver struct{}

func (NopObserver) ReviewRequested()    {}
func (NopObserver) ReviewDropped()      {}
func (NopObserver) ReviewFailed(string) {}
func (NopObserver) QueueDepth(int)      {}

// failureReason classifies a review-creation error for ReviewFailed.
func failureReason(err error) string {
	var authErr *AuthError
	var rateErr *RateLimitError
	var parseErr *ParseError
	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "service"
	}
}

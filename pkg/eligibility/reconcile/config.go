package reconcile

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates an invalid reconciliation configuration.
var ErrInvalidConfig = errors.New("invalid reconcile config")

// Config contains configuration for the reconciliation policy.
type Config struct {
	// LowConfidenceThreshold is the rule confidence below which a decision
	// is escalated for human review even without a conflict.
	// Default: 0.7.
	LowConfidenceThreshold float64
}

// DefaultConfig returns the default reconciliation configuration.
func DefaultConfig() *Config {
	return &Config{
		LowConfidenceThreshold: 0.7,
	}
}

// Validate validates the reconciliation configuration.
func (c *Config) Validate() error {
	if c.LowConfidenceThreshold < 0 || c.LowConfidenceThreshold > 1 {
		return fmt.Errorf("%w: low confidence threshold must be in [0, 1], got %v", ErrInvalidConfig, c.LowConfidenceThreshold)
	}
	return nil
}

// WithLowConfidenceThreshold sets the review escalation threshold.
func (c *Config) WithLowConfidenceThreshold(threshold float64) *Config {
	c.LowConfidenceThreshold = threshold
	return c
}

package eligibility

import "fmt"

// Config contains configuration for the eligibility aggregator.
type Config struct {
	// UnlikelyFailureFraction is the fraction of tallied mandatory
	// requirements that must definitively fail before the verdict drops
	// from "possible" to "unlikely".
	// Default: 0.5.
	UnlikelyFailureFraction float64

	// Parallelism is the maximum number of requirements evaluated
	// concurrently. 1 evaluates sequentially.
	// Default: 1.
	Parallelism int
}

// DefaultConfig returns the default aggregator configuration.
func DefaultConfig() *Config {
	return &Config{
		UnlikelyFailureFraction: 0.5,
		Parallelism:             1,
	}
}

// Validate validates the aggregator configuration.
func (c *Config) Validate() error {
	if c.UnlikelyFailureFraction <= 0 || c.UnlikelyFailureFraction > 1 {
		return fmt.Errorf("%w: unlikely failure fraction must be in (0, 1], got %v", ErrInvalidConfig, c.UnlikelyFailureFraction)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be at least 1, got %d", ErrInvalidConfig, c.Parallelism)
	}
	return nil
}

// WithUnlikelyFailureFraction sets the unlikely verdict threshold.
func (c *Config) WithUnlikelyFailureFraction(fraction float64) *Config {
	c.UnlikelyFailureFraction = fraction
	return c
}

// WithParallelism sets the evaluation concurrency limit.
func (c *Config) WithParallelism(n int) *Config {
	c.Parallelism = n
	return c
}

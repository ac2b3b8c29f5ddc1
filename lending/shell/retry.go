package shell

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/library-lending/lending-ledger/eventstore"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	retriesMetric           = "journal_retries_total"
	retryDelayMetric        = "journal_retry_delay_seconds"
	maxRetriesReachedMetric = "journal_max_retries_reached_total"
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithRetryMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyOperation is returned when an empty operation is provided to WithRetryMetrics.
	ErrEmptyOperation = errors.New("operation must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector MetricsCollector
	operation        string
}

// RetryWithExponentialBackoff executes fn and retries it on optimistic concurrency conflicts.
//
// Retry schedule (default): 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, 160 ms, each with up to 30% jitter.
//
// Only eventstore.ErrConcurrencyConflict is retried, all other errors fail fast.
// A canceled context aborts the wait between attempts.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) error {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return err
		}
	}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // jitter needs no crypto rand
			backoffDelay := delay + time.Duration(jitter)

			config.recordDuration(ctx, retryDelayMetric, backoffDelay, map[string]string{
				"operation":      config.operation,
				"attempt_number": strconv.Itoa(attempt),
			})

			select {
			case <-time.After(backoffDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !isRetryableError(lastErr) {
			return lastErr
		}

		if attempt < config.maxAttempts-1 {
			config.incrementCounter(ctx, retriesMetric, map[string]string{
				"operation":      config.operation,
				"attempt_number": strconv.Itoa(attempt + 1),
				"error_type":     errorTypeOf(lastErr),
			})
		}
	}

	config.incrementCounter(ctx, maxRetriesReachedMetric, map[string]string{
		"operation":        config.operation,
		"final_error_type": errorTypeOf(lastErr),
	})

	return lastErr
}

func (c *retryConfig) recordDuration(ctx context.Context, metric string, d time.Duration, labels map[string]string) {
	if c.metricsCollector == nil {
		return
	}

	if contextual, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	c.metricsCollector.RecordDuration(metric, d, labels)
}

func (c *retryConfig) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if c.metricsCollector == nil {
		return
	}

	if contextual, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	c.metricsCollector.IncrementCounter(metric, labels)
}

// isRetryableError determines if an error should be retried.
// Timeouts are not retried, retrying them under overload only makes it worse.
func isRetryableError(err error) bool {
	return errors.Is(err, eventstore.ErrConcurrencyConflict)
}

func errorTypeOf(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, eventstore.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts, including the first one.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, baseDelay*8, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter as a fraction of the backoff delay, from 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryMetrics sets the metrics collector for retry instrumentation, labeled with operation.
func WithRetryMetrics(collector MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if operation == "" {
			return ErrEmptyOperation
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}

package ledger

import (
	"time"
)

// Option defines a functional option for configuring the LendingLedger.
type Option func(*LendingLedger)

// WithLogger sets the logger, it receives decisions at debug level and rejected input at warn level.
func WithLogger(logger Logger) Option {
	return func(l *LendingLedger) {
		l.logger = logger
	}
}

// WithMetrics sets the metrics collector for borrow, return, stock and fee counters.
func WithMetrics(collector MetricsCollector) Option {
	return func(l *LendingLedger) {
		l.metrics = collector
	}
}

// WithEventRecorder sets the sink for the domain events of all decisions.
func WithEventRecorder(recorder EventRecorder) Option {
	return func(l *LendingLedger) {
		l.recorder = recorder
	}
}

// WithClock replaces time.Now as the source of event timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *LendingLedger) {
		l.now = now
	}
}

// WithFeeSchedule replaces the default flat fee schedule.
func WithFeeSchedule(schedule FeeSchedule) Option {
	return func(l *LendingLedger) {
		l.feeSchedule = schedule
	}
}

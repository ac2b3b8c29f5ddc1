package ledger

import (
	"time"

	"github.com/library-lending/lending-ledger/lending/core"
)

// ActivityChecker reports whether a user account may borrow.
type ActivityChecker interface {
	IsActive(userID string) bool
}

// Notifier delivers a user-facing message. Delivery is fire-and-forget.
type Notifier interface {
	Notify(userID, message string)
}

// EventRecorder receives every domain event the ledger produces, in state-change order.
// It is called while the ledger is locked and must not block.
type EventRecorder interface {
	Record(event core.DomainEvent)
}

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting ledger metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

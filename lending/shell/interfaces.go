package shell

import (
	"context"

	"github.com/library-lending/lending-ledger/eventstore"
)

// Logger is satisfied by *slog.Logger.
type Logger = eventstore.Logger

// MetricsCollector interface for collecting journal metrics.
type MetricsCollector = eventstore.MetricsCollector

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
type ContextualMetricsCollector = eventstore.ContextualMetricsCollector

// QueriesEvents is the read side of an event store engine.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// EventStore is implemented by memoryengine.EventStore and postgresengine.EventStore.
type EventStore interface {
	QueriesEvents
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

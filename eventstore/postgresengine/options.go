package postgresengine

import (
	"github.com/library-lending/lending-ledger/eventstore"
)

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the table name for the EventStore.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EventStore.
//
// Debug level: SQL statements with execution timing
// Info level: event counts, durations, concurrency conflicts
// Warn level: cleanup failures
// Error level: failures that abort the operation.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the EventStore.
// It receives query/append durations, event counts, concurrency conflicts and database errors.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.metricsCollector = collector
		return nil
	}
}

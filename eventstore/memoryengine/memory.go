// Package memoryengine provides a process-local EventStore engine.
//
// It honors the same contract as postgresengine (title stream filters, optimistic concurrency via the
// expected maximum sequence number) and is used when no journal DSN is configured and in tests.
package memoryengine

import (
	"context"
	"sync"

	"github.com/library-lending/lending-ledger/eventstore"
)

type storedEvent struct {
	sequenceNumber uint
	event          eventstore.StorableEvent
}

// EventStore keeps all events in a mutex-guarded slice ordered by sequence number.
type EventStore struct {
	mu     sync.RWMutex
	events []storedEvent
	logger eventstore.Logger
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore)

// WithLogger sets the logger for the EventStore.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) {
		es.logger = logger
	}
}

// NewEventStore creates an empty EventStore.
func NewEventStore(options ...Option) *EventStore {
	es := &EventStore{}

	for _, option := range options {
		option(es)
	}

	return es
}

// Query returns the events matching the Filter in sequence order and the highest sequence number among them.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	events, maxSequenceNumber := es.matching(filter)

	return events, maxSequenceNumber, nil
}

// Append stores the events if the highest sequence number matching the Filter still equals
// expectedMaxSequenceNumber, otherwise it returns eventstore.ErrConcurrencyConflict.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	if _, current := es.matching(filter); current != expectedMaxSequenceNumber {
		if es.logger != nil {
			es.logger.Debug(
				"eventstore concurrency conflict",
				"expected_max_sequence", expectedMaxSequenceNumber,
				"actual_max_sequence", current,
			)
		}

		return eventstore.ErrConcurrencyConflict
	}

	for _, e := range append([]eventstore.StorableEvent{event}, additionalEvents...) {
		es.events = append(es.events, storedEvent{sequenceNumber: uint(len(es.events)) + 1, event: e})
	}

	if es.logger != nil {
		es.logger.Debug("eventstore append", "event_count", 1+len(additionalEvents))
	}

	return nil
}

func (es *EventStore) matching(filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint) {
	events := make(eventstore.StorableEvents, 0)
	var maxSequenceNumber eventstore.MaxSequenceNumberUint

	for _, stored := range es.events {
		if !filter.Matches(stored.event) {
			continue
		}

		events = append(events, stored.event)
		maxSequenceNumber = stored.sequenceNumber
	}

	return events, maxSequenceNumber
}

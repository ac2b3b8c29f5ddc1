package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent represents a business event that has occurred in the ledger.
type DomainEvent interface {
	// EventType returns the string identifier for this event type.
	EventType() EventTypeString

	// HasTitle returns the title the event belongs to, it names the journal stream.
	HasTitle() TitleString

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time

	// IsErrorEvent returns true if this event represents a rejected attempt.
	IsErrorEvent() bool
}

package core

import (
	"time"
)

// TitleString represents a book title, the key of the inventory and borrow-record tables.
type TitleString = string

// ReaderIDString represents a reader (user) identifier.
type ReaderIDString = string

// EventTypeString represents the type identifier of a domain event.
type EventTypeString = string

// OccurredAtTS represents when an event occurred.
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision,
// which is the precision Postgres keeps.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

package core

import (
	"time"
)

// LendingBookToReaderFailedEventType is the event type identifier.
const LendingBookToReaderFailedEventType = "LendingBookToReaderFailed"

const (
	FailureReaderAccountNotActive = "reader account is not active"
	FailureNoCopiesAvailable      = "no copies available"
)

// LendingBookToReaderFailed represents when lending a copy to a reader fails due to business rule violations.
type LendingBookToReaderFailed struct {
	Title       TitleString    `json:"title"`
	ReaderID    ReaderIDString `json:"readerId"`
	FailureInfo string         `json:"failureInfo"`
	OccurredAt  OccurredAtTS   `json:"occurredAt"`
}

// BuildLendingBookToReaderFailed creates a new LendingBookToReaderFailed event.
func BuildLendingBookToReaderFailed(
	title TitleString,
	readerID ReaderIDString,
	failureInfo string,
	occurredAt time.Time,
) LendingBookToReaderFailed {

	return LendingBookToReaderFailed{
		Title:       title,
		ReaderID:    readerID,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e LendingBookToReaderFailed) EventType() EventTypeString {
	return LendingBookToReaderFailedEventType
}

func (e LendingBookToReaderFailed) HasTitle() TitleString {
	return e.Title
}

// HasOccurredAt returns when this event occurred.
func (e LendingBookToReaderFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failed operation.
func (e LendingBookToReaderFailed) IsErrorEvent() bool {
	return true
}

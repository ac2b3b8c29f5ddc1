package core

import (
	"time"
)

// ReturningBookFromReaderFailedEventType is the event type identifier.
const ReturningBookFromReaderFailedEventType = "ReturningBookFromReaderFailed"

const (
	FailureBookIsNotLent           = "book is not lent"
	FailureBookIsLentToOtherReader = "book is lent to another reader"
)

// ReturningBookFromReaderFailed represents when returning a copy fails due to business rule violations.
type ReturningBookFromReaderFailed struct {
	Title       TitleString    `json:"title"`
	ReaderID    ReaderIDString `json:"readerId"`
	FailureInfo string         `json:"failureInfo"`
	OccurredAt  OccurredAtTS   `json:"occurredAt"`
}

// BuildReturningBookFromReaderFailed creates a new ReturningBookFromReaderFailed event.
func BuildReturningBookFromReaderFailed(
	title TitleString,
	readerID ReaderIDString,
	failureInfo string,
	occurredAt time.Time,
) ReturningBookFromReaderFailed {

	return ReturningBookFromReaderFailed{
		Title:       title,
		ReaderID:    readerID,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e ReturningBookFromReaderFailed) EventType() EventTypeString {
	return ReturningBookFromReaderFailedEventType
}

func (e ReturningBookFromReaderFailed) HasTitle() TitleString {
	return e.Title
}

func (e ReturningBookFromReaderFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failed operation.
func (e ReturningBookFromReaderFailed) IsErrorEvent() bool {
	return true
}

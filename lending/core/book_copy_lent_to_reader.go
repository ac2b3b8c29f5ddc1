package core

import (
	"time"
)

// BookCopyLentToReaderEventType is the event type identifier.
const BookCopyLentToReaderEventType = "BookCopyLentToReader"

// BookCopyLentToReader represents when a copy of a title is lent to a reader.
type BookCopyLentToReader struct {
	Title      TitleString    `json:"title"`
	ReaderID   ReaderIDString `json:"readerId"`
	OccurredAt OccurredAtTS   `json:"occurredAt"`
}

// BuildBookCopyLentToReader creates a new BookCopyLentToReader event.
func BuildBookCopyLentToReader(title TitleString, readerID ReaderIDString, occurredAt time.Time) BookCopyLentToReader {
	return BookCopyLentToReader{
		Title:      title,
		ReaderID:   readerID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e BookCopyLentToReader) EventType() EventTypeString {
	return BookCopyLentToReaderEventType
}

// HasTitle returns the title of the lent copy.
func (e BookCopyLentToReader) HasTitle() TitleString {
	return e.Title
}

// HasOccurredAt returns when this event occurred.
func (e BookCopyLentToReader) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns false since this event represents a successful operation.
func (e BookCopyLentToReader) IsErrorEvent() bool {
	return false
}

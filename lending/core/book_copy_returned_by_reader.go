package core

import (
	"time"
)

// BookCopyReturnedByReaderEventType is the event type identifier.
const BookCopyReturnedByReaderEventType = "BookCopyReturnedByReader"

// BookCopyReturnedByReader represents when a reader returns the borrowed copy of a title.
type BookCopyReturnedByReader struct {
	Title      TitleString    `json:"title"`
	ReaderID   ReaderIDString `json:"readerId"`
	OccurredAt OccurredAtTS   `json:"occurredAt"`
}

// BuildBookCopyReturnedByReader creates a new BookCopyReturnedByReader event.
func BuildBookCopyReturnedByReader(
	title TitleString,
	readerID ReaderIDString,
	occurredAt time.Time,
) BookCopyReturnedByReader {

	return BookCopyReturnedByReader{
		Title:      title,
		ReaderID:   readerID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e BookCopyReturnedByReader) EventType() EventTypeString {
	return BookCopyReturnedByReaderEventType
}

func (e BookCopyReturnedByReader) HasTitle() TitleString {
	return e.Title
}

func (e BookCopyReturnedByReader) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e BookCopyReturnedByReader) IsErrorEvent() bool {
	return false
}

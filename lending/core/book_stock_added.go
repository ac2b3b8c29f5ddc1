package core

import (
	"time"
)

// BookStockAddedEventType is the event type identifier.
const BookStockAddedEventType = "BookStockAdded"

// BookStockAdded represents copies of a title arriving in the inventory.
type BookStockAdded struct {
	Title      TitleString  `json:"title"`
	Count      int          `json:"count"`
	OccurredAt OccurredAtTS `json:"occurredAt"`
}

// BuildBookStockAdded creates a new BookStockAdded event.
func BuildBookStockAdded(title TitleString, count int, occurredAt time.Time) BookStockAdded {
	return BookStockAdded{
		Title:      title,
		Count:      count,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e BookStockAdded) EventType() EventTypeString {
	return BookStockAddedEventType
}

func (e BookStockAdded) HasTitle() TitleString {
	return e.Title
}

func (e BookStockAdded) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e BookStockAdded) IsErrorEvent() bool {
	return false
}

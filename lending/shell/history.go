package shell

import (
	"context"

	"github.com/library-lending/lending-ledger/eventstore"
	"github.com/library-lending/lending-ledger/lending/core"
)

// ErrEmptyTitle is returned for an empty title, whose filter would match every title stream.
var ErrEmptyTitle = eventstore.ErrEmptyTitle

// TitleHistory returns the journal of the title as domain events, oldest first.
func TitleHistory(ctx context.Context, store QueriesEvents, title core.TitleString) (core.DomainEvents, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}

	filter := eventstore.BuildEventFilter().
		ForTitles(title).
		Finalize()

	storableEvents, _, err := store.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	return DomainEventsFrom(storableEvents)
}

// Package eventstore provides the storage contract for the lending journal:
// an append-only trail of the domain events the lending ledger produces.
//
// Events are grouped into "title streams". A Filter selects the events of one or
// more titles, optionally narrowed down to event types and an occurred-at range.
// Appends are guarded with optimistic concurrency: the caller passes the
// MaxSequenceNumberUint it observed when querying with the same Filter, and the
// append is rejected with ErrConcurrencyConflict when the stream has moved on since.
//
// Common usage pattern:
//
//	filter := eventstore.BuildEventFilter().
//		ForTitles(title).
//		Finalize()
//
//	_, maxSeq, err := store.Query(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	event, err := eventstore.BuildStorableEvent(eventType, title, occurredAt, payloadJSON, metadataJSON)
//	err = store.Append(ctx, filter, maxSeq, event)
//
// Engines live in sub-packages: postgresengine (goqu-built SQL over pgx, database/sql or sqlx)
// and memoryengine (process-local, used by default and in tests).
package eventstore

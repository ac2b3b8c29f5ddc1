// Package postgresengine stores the lending journal in PostgreSQL.
//
// Queries and guarded inserts are built with goqu. Three client libraries are supported through
// internal adapters: pgx (pgxpool.Pool), database/sql (e.g. with the lib/pq driver) and sqlx.
//
// An append only succeeds when the highest sequence number of the title stream, selected with the
// same Filter that was used for the preceding Query, still equals the expected one. Otherwise no
// row is inserted and eventstore.ErrConcurrencyConflict is returned.
//
// Usage:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		pool,
//		postgresengine.WithTableName("lending_journal"),
//		postgresengine.WithLogger(logger),
//	)
//	_ = store.CreateSchema(ctx)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
package postgresengine

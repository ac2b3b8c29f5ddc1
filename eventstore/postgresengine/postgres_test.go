package postgresengine

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/library-lending/lending-ledger/eventstore"
	"github.com/library-lending/lending-ledger/eventstore/postgresengine/internal/adapters"
	"github.com/library-lending/lending-ledger/testutil/helper"
)

func Test_Factories_RejectNilConnections(t *testing.T) {
	_, pgxErr := NewEventStoreFromPGXPool(nil)
	_, sqlErr := NewEventStoreFromSQLDB(nil)
	_, sqlxErr := NewEventStoreFromSQLX(nil)

	assert.ErrorIs(t, pgxErr, eventstore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlErr, eventstore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlxErr, eventstore.ErrNilDatabaseConnection)
}

func Test_WithTableName_RejectsEmptyName(t *testing.T) {
	_, err := newEventStore(&fakeDB{}, WithTableName(""))

	assert.ErrorIs(t, err, eventstore.ErrEmptyEventsTableName)
}

func Test_Query_BuildsTitleStreamSelect_And_ScansRows(t *testing.T) {
	// arrange
	occurredAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: []fakeRow{
		{"BookStockAdded", "Dune", occurredAt, []byte(`{"count":2}`), []byte(`{}`), 4},
		{"BookCopyLentToReader", "Dune", occurredAt, []byte(`{"readerId":"r1"}`), []byte(`{}`), 9},
	}}
	es, err := newEventStore(db, WithTableName("journal"))
	require.NoError(t, err)

	filter := eventstore.BuildEventFilter().
		ForTitles("Dune").
		OfEventTypes("BookStockAdded", "BookCopyLentToReader").
		Finalize()

	// act
	events, maxSeq, queryErr := es.Query(context.Background(), filter)

	// assert
	assert.NoError(t, queryErr)
	assert.Len(t, events, 2)
	assert.Equal(t, uint(9), maxSeq)
	assert.Equal(t, "Dune", events[0].Title)
	assert.True(t, db.closed)

	require.Len(t, db.queries, 1)
	sqlQuery := db.queries[0]
	assert.Contains(t, sqlQuery, `FROM "journal"`)
	assert.Contains(t, sqlQuery, `"title" IN ('Dune')`)
	assert.Contains(t, sqlQuery, `"event_type" IN ('BookCopyLentToReader', 'BookStockAdded')`)
	assert.Contains(t, sqlQuery, `ORDER BY "sequence_number" ASC`)
}

func Test_Query_WithEmptyFilter_HasNoWhereClause(t *testing.T) {
	// arrange
	db := &fakeDB{}
	es, _ := newEventStore(db)

	// act
	_, maxSeq, err := es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	assert.NoError(t, err)
	assert.Equal(t, uint(0), maxSeq)
	assert.NotContains(t, db.queries[0], "WHERE")
}

func Test_Query_WrapsDatabaseErrors(t *testing.T) {
	// arrange
	es, _ := newEventStore(&fakeDB{queryErr: errors.New("connection refused")})

	// act
	_, _, err := es.Query(context.Background(), eventstore.BuildEventFilter().ForTitles("Dune").Finalize())

	// assert
	assert.ErrorIs(t, err, eventstore.ErrQueryingEventsFailed)
	assert.ErrorContains(t, err, "connection refused")
}

func Test_Append_SingleEvent_BuildsGuardedInsert(t *testing.T) {
	// arrange
	db := &fakeDB{rowsAffected: 1}
	es, _ := newEventStore(db)
	filter := eventstore.BuildEventFilter().ForTitles("Dune").Finalize()

	// act
	err := es.Append(context.Background(), filter, 3, givenStorableEvent(t, "BookCopyLentToReader"))

	// assert
	assert.NoError(t, err)
	require.Len(t, db.execs, 1)
	sqlQuery := db.execs[0]
	assert.Contains(t, sqlQuery, `INSERT INTO "lending_journal"`)
	assert.Contains(t, sqlQuery, `WITH context AS (SELECT MAX("sequence_number") AS "max_seq"`)
	assert.Contains(t, sqlQuery, `"title" IN ('Dune')`)
	assert.Contains(t, sqlQuery, `COALESCE("max_seq", 0) = 3`)
	assert.Contains(t, sqlQuery, `'{"readerId":"r1"}'::jsonb`)
}

func Test_Append_MultipleEvents_UsesUnionAll(t *testing.T) {
	// arrange
	db := &fakeDB{rowsAffected: 2}
	es, _ := newEventStore(db)
	filter := eventstore.BuildEventFilter().ForTitles("Dune").Finalize()

	// act
	err := es.Append(
		context.Background(),
		filter,
		0,
		givenStorableEvent(t, "BookStockAdded"),
		givenStorableEvent(t, "BookCopyLentToReader"),
	)

	// assert
	assert.NoError(t, err)
	assert.Contains(t, db.execs[0], "UNION ALL")
	assert.Contains(t, db.execs[0], "vals AS (")
}

func Test_Append_ReturnsConcurrencyConflict_WhenNoRowsInserted(t *testing.T) {
	// arrange
	logHandler := helper.NewTestLogHandler(false)
	metrics := &metricsSpy{}
	es, _ := newEventStore(&fakeDB{rowsAffected: 0}, WithLogger(slog.New(logHandler)), WithMetrics(metrics))

	// act
	err := es.Append(
		context.Background(),
		eventstore.BuildEventFilter().ForTitles("Dune").Finalize(),
		5,
		givenStorableEvent(t, "BookCopyLentToReader"),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.True(t, logHandler.HasInfoLog(logMsgOperation+logMsgConcurrencyConflict))
	assert.Contains(t, metrics.counters, metricConcurrencyConflicts)
}

func Test_Append_WrapsExecErrors(t *testing.T) {
	// arrange
	metrics := &metricsSpy{}
	es, _ := newEventStore(&fakeDB{execErr: errors.New("disk full")}, WithMetrics(metrics))

	// act
	err := es.Append(
		context.Background(),
		eventstore.BuildEventFilter().ForTitles("Dune").Finalize(),
		0,
		givenStorableEvent(t, "BookStockAdded"),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrAppendingEventFailed)
	assert.Contains(t, metrics.counters, metricDatabaseErrors)
}

func Test_CreateSchema_CreatesTableAndIndex(t *testing.T) {
	// arrange
	db := &fakeDB{}
	es, _ := newEventStore(db, WithTableName("journal"))

	// act
	err := es.CreateSchema(context.Background())

	// assert
	assert.NoError(t, err)
	require.Len(t, db.execs, 2)
	assert.Contains(t, db.execs[0], `CREATE TABLE IF NOT EXISTS "journal"`)
	assert.Contains(t, db.execs[0], "sequence_number BIGSERIAL PRIMARY KEY")
	assert.Contains(t, db.execs[1], `CREATE INDEX IF NOT EXISTS "journal_title_seq_idx" ON "journal" (title, sequence_number)`)
}

func Test_CreateSchema_WrapsErrors(t *testing.T) {
	es, _ := newEventStore(&fakeDB{execErr: errors.New("permission denied")})

	err := es.CreateSchema(context.Background())

	assert.ErrorIs(t, err, eventstore.ErrCreatingSchemaFailed)
}

func givenStorableEvent(t *testing.T, eventType string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(
		eventType,
		"Dune",
		time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		[]byte(`{"readerId":"r1"}`),
	)
	require.NoError(t, err)

	return event
}

/***** fakes *****/

type fakeRow struct {
	eventType  string
	title      string
	occurredAt time.Time
	payload    []byte
	metadata   []byte
	seq        uint
}

type fakeDB struct {
	rows         []fakeRow
	rowsAffected int64
	queryErr     error
	execErr      error
	queries      []string
	execs        []string
	closed       bool
}

func (f *fakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.queries = append(f.queries, query)
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return &fakeRows{db: f, pos: -1}, nil
}

func (f *fakeDB) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	f.execs = append(f.execs, query)
	if f.execErr != nil {
		return nil, f.execErr
	}

	return fakeResult(f.rowsAffected), nil
}

type fakeRows struct {
	db  *fakeDB
	pos int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.db.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.db.rows[r.pos]
	*dest[0].(*string) = row.eventType
	*dest[1].(*string) = row.title
	*dest[2].(*time.Time) = row.occurredAt
	*dest[3].(*[]byte) = row.payload
	*dest[4].(*[]byte) = row.metadata
	*dest[5].(*uint) = row.seq

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	r.db.closed = true
	return nil
}

type fakeResult int64

func (f fakeResult) RowsAffected() (int64, error) {
	return int64(f), nil
}

type metricsSpy struct {
	counters []string
}

func (m *metricsSpy) RecordDuration(string, time.Duration, map[string]string) {}

func (m *metricsSpy) IncrementCounter(metric string, _ map[string]string) {
	m.counters = append(m.counters, metric)
}

func (m *metricsSpy) RecordValue(string, float64, map[string]string) {}

package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/library-lending/lending-ledger/eventstore"
	"github.com/library-lending/lending-ledger/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName          = "lending_journal"
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgCreateSchemaFailed       = "failed to create journal schema"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgSchemaCreated            = "schema created"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "eventstore operation: "
	logAttrError                   = "error"
	logAttrQuery                   = "query"
	logAttrTable                   = "table"
	logAttrEventType               = "event_type"
	logAttrEventCount              = "event_count"
	logAttrDurationMS              = "duration_ms"
	logAttrExpectedEvents          = "expected_events"
	logAttrRowsAffected            = "rows_affected"
	logAttrExpectedSequence        = "expected_sequence"
	logActionQuery                 = "query"
	logActionAppend                = "append"
	logActionCreateSchema          = "create schema"
	colEventType                   = "event_type"
	colTitle                       = "title"
	colOccurredAt                  = "occurred_at"
	colPayload                     = "payload"
	colMetadata                    = "metadata"
	colSequenceNumber              = "sequence_number"
	cteContext                     = "context"
	cteVals                        = "vals"
	dialectPostgres                = "postgres"
	aliasMaxSeq                    = "max_seq"
	castText                       = "?::text"
	castTimestamp                  = "?::timestamp with time zone"
	castJsonb                      = "?::jsonb"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// EventStore appends and queries title streams in a Postgres table.
type EventStore struct {
	db               adapters.DBAdapter
	eventTableName   string
	logger           eventstore.Logger
	metricsCollector eventstore.MetricsCollector
}

type queryResultRow struct {
	eventType      string
	title          string
	occurredAt     time.Time
	payload        []byte
	metadata       []byte
	sequenceNumber eventstore.MaxSequenceNumberUint
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (EventStore, error) {
	es := EventStore{
		db:             db,
		eventTableName: defaultEventTableName,
	}

	for _, option := range options {
		if err := option(&es); err != nil {
			return EventStore{}, err
		}
	}

	return es, nil
}

// CreateSchema creates the journal table and its title stream index if they don't exist yet.
func (es EventStore) CreateSchema(ctx context.Context) error {
	table := pq.QuoteIdentifier(es.eventTableName)
	index := pq.QuoteIdentifier(es.eventTableName + "_title_seq_idx")

	statements := []sqlQueryString{
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				%s BIGSERIAL PRIMARY KEY,
				%s TEXT NOT NULL,
				%s TEXT NOT NULL,
				%s TIMESTAMPTZ NOT NULL,
				%s JSONB NOT NULL,
				%s JSONB NOT NULL
			)`,
			table, colSequenceNumber, colEventType, colTitle, colOccurredAt, colPayload, colMetadata,
		),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s)`, index, table, colTitle, colSequenceNumber),
	}

	for _, statement := range statements {
		start := time.Now()
		_, execErr := es.db.Exec(ctx, statement)
		es.logQueryWithDuration(statement, logActionCreateSchema, time.Since(start))

		if execErr != nil {
			es.logError(logMsgCreateSchemaFailed, execErr, logAttrTable, es.eventTableName)

			return errors.Join(eventstore.ErrCreatingSchemaFailed, execErr)
		}
	}

	es.logOperation(logMsgSchemaCreated, logAttrTable, es.eventTableName)

	return nil
}

// Query retrieves the events matching the eventstore.Filter in sequence order
// as well as the MaxSequenceNumberUint of this title stream at the time of the query.
func (es EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	var empty eventstore.StorableEvents
	start := time.Now()

	sqlQuery, buildQueryErr := es.buildSelectQuery(filter)
	if buildQueryErr != nil {
		es.logError(logMsgBuildSelectQueryFailed, buildQueryErr)
		es.recordError(ctx, operationQuery, errorTypeBuildQuery, time.Since(start))

		return empty, 0, buildQueryErr
	}

	rows, queryErr := es.db.Query(ctx, sqlQuery)
	es.logQueryWithDuration(sqlQuery, logActionQuery, time.Since(start))

	if queryErr != nil {
		es.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		es.recordError(ctx, operationQuery, errorTypeDatabase, time.Since(start))

		return empty, 0, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer es.closeRows(rows)

	eventStream, maxSequenceNumber, scanErr := es.processQueryResults(rows)
	if scanErr != nil {
		es.recordError(ctx, operationQuery, errorTypeScan, time.Since(start))

		return empty, 0, scanErr
	}

	duration := time.Since(start)
	es.recordDuration(ctx, metricQueryDuration, duration, operationQuery, statusSuccess)
	es.recordValue(ctx, metricEventsQueried, float64(len(eventStream)), operationQuery)
	es.logOperation(
		logMsgQueryCompleted,
		logAttrEventCount, len(eventStream),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return eventStream, maxSequenceNumber, nil
}

func (es EventStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if es.logger != nil {
			es.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

func (es EventStore) processQueryResults(rows adapters.DBRows) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	var empty eventstore.StorableEvents
	result := queryResultRow{}
	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		rowScanErr := rows.Scan(
			&result.eventType,
			&result.title,
			&result.occurredAt,
			&result.payload,
			&result.metadata,
			&result.sequenceNumber,
		)
		if rowScanErr != nil {
			es.logError(logMsgScanRowFailed, rowScanErr)

			return empty, 0, errors.Join(eventstore.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildStorableErr := eventstore.BuildStorableEvent(
			result.eventType,
			result.title,
			result.occurredAt,
			result.payload,
			result.metadata,
		)
		if buildStorableErr != nil {
			es.logError(logMsgBuildStorableEventFailed, buildStorableErr, logAttrEventType, result.eventType)

			return empty, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		eventStream = append(eventStream, event)
		maxSequenceNumber = result.sequenceNumber
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		es.logError(logMsgScanRowFailed, rowsErr)

		return empty, 0, errors.Join(eventstore.ErrScanningDBRowFailed, rowsErr)
	}

	return eventStream, maxSequenceNumber, nil
}

// Append appends one or multiple eventstore.StorableEvent(s) if the title stream selected by the
// eventstore.Filter has not moved past expectedMaxSequenceNumber.
//
// The Filter should be the same as the one used for the Query before making the decision.
func (es EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	start := time.Now()
	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	sqlQuery, buildQueryErr := es.buildAppendQuery(allEvents, filter, expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		es.logError(logMsgBuildInsertQueryFailed, buildQueryErr, logAttrEventCount, len(allEvents))
		es.recordError(ctx, operationAppend, errorTypeBuildQuery, time.Since(start))

		return buildQueryErr
	}

	rowsAffected, execErr := es.executeAppendQuery(ctx, sqlQuery)
	if execErr != nil {
		es.recordError(ctx, operationAppend, errorTypeDatabase, time.Since(start))

		return execErr
	}

	if rowsAffected < int64(len(allEvents)) {
		es.logOperation(
			logMsgConcurrencyConflict,
			logAttrExpectedEvents, len(allEvents),
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
		)
		es.incrementCounter(ctx, metricConcurrencyConflicts, map[string]string{labelOperation: operationAppend})

		return eventstore.ErrConcurrencyConflict
	}

	duration := time.Since(start)
	es.recordDuration(ctx, metricAppendDuration, duration, operationAppend, statusSuccess)
	es.recordValue(ctx, metricEventsAppended, float64(len(allEvents)), operationAppend)
	es.logOperation(
		logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil
}

func (es EventStore) executeAppendQuery(ctx context.Context, sqlQuery string) (rowsAffectedInt64, error) {
	start := time.Now()
	tag, execErr := es.db.Exec(ctx, sqlQuery)
	es.logQueryWithDuration(sqlQuery, logActionAppend, time.Since(start))

	if execErr != nil {
		es.logError(logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		es.logError(logMsgRowsAffectedFailed, rowsAffectedErr)

		return 0, errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

func (es EventStore) buildAppendQuery(
	allEvents eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	if len(allEvents) == 1 {
		return es.buildInsertQueryForSingleEvent(allEvents[0], filter, expectedMaxSequenceNumber)
	}

	return es.buildInsertQueryForMultipleEvents(allEvents, filter, expectedMaxSequenceNumber)
}

func (es EventStore) buildSelectQuery(filter eventstore.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventType, colTitle, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Where(whereClause(filter)).
		Order(goqu.I(colSequenceNumber).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es EventStore) contextStatement(filter eventstore.Filter) *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq)).
		Where(whereClause(filter))
}

func (es EventStore) buildInsertQueryForSingleEvent(
	event eventstore.StorableEvent,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.V(event.EventType),
			goqu.V(event.Title),
			goqu.V(event.OccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)),
			goqu.L(castJsonb, string(event.MetadataJSON)),
		).
		Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber)))

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colTitle, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, es.contextStatement(filter))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es EventStore) buildInsertQueryForMultipleEvents(
	events eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	var valuesStmt *goqu.SelectDataset
	for _, event := range events {
		row := builder.Select(
			goqu.L(castText, event.EventType).As(colEventType),
			goqu.L(castText, event.Title).As(colTitle),
			goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
			goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
		)

		if valuesStmt == nil {
			valuesStmt = row
			continue
		}

		valuesStmt = valuesStmt.UnionAll(row)
	}

	valsCol := func(col string) string { return fmt.Sprintf("%s.%s", cteVals, col) }

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colTitle, colOccurredAt, colPayload, colMetadata).
		With(cteContext, es.contextStatement(filter)).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					valsCol(colEventType),
					valsCol(colTitle),
					valsCol(colOccurredAt),
					valsCol(colPayload),
					valsCol(colMetadata),
				).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// whereClause translates the Filter: titles and event types each match with IN, the occurred-at
// bounds are inclusive, and an empty Filter yields no condition at all.
func whereClause(filter eventstore.Filter) goqu.Expression {
	expressions := make([]goqu.Expression, 0, 4)

	if len(filter.Titles()) > 0 {
		expressions = append(expressions, goqu.C(colTitle).In(filter.Titles()))
	}

	if len(filter.EventTypes()) > 0 {
		expressions = append(expressions, goqu.C(colEventType).In(filter.EventTypes()))
	}

	if !filter.OccurredFrom().IsZero() {
		expressions = append(expressions, goqu.C(colOccurredAt).Gte(filter.OccurredFrom()))
	}

	if !filter.OccurredUntil().IsZero() {
		expressions = append(expressions, goqu.C(colOccurredAt).Lte(filter.OccurredUntil()))
	}

	return goqu.And(expressions...)
}

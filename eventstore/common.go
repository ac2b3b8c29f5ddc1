package eventstore

import (
	"errors"
)

var (
	ErrEmptyEventsTableName        = errors.New("events table name must not be empty")
	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrConcurrencyConflict         = errors.New("concurrency error, no rows were affected")
	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrAppendingEventFailed        = errors.New("appending the event failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting rows affected failed")
	ErrCreatingSchemaFailed        = errors.New("creating schema failed")
)

// MaxSequenceNumberUint is a type alias for uint, representing the maximum sequence number of a title stream.
type MaxSequenceNumberUint = uint

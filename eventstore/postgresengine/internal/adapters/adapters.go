// Package adapters hides the differences between the Postgres client libraries the journal engine
// accepts (pgxpool.Pool, sql.DB, sqlx.DB) behind one DBAdapter interface.
package adapters

import (
	"context"
	"database/sql"
)

// DBAdapter defines the interface for database operations needed by the event store.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}

// stdRows wraps sql.Rows, it is shared by the database/sql and sqlx adapters.
type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *stdRows) Err() error {
	return s.rows.Err()
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}

type stdResult struct {
	result sql.Result
}

func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

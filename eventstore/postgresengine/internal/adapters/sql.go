package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// sqlQueryer is satisfied by both *sql.DB and *sqlx.DB.
type sqlQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLAdapter implements DBAdapter for database/sql style connections.
type SQLAdapter struct {
	db sqlQueryer
}

// NewSQLAdapter creates an adapter for a sql.DB, e.g. opened with the lib/pq driver.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// NewSQLXAdapter creates an adapter for a sqlx.DB.
func NewSQLXAdapter(db *sqlx.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

const (
	postgresDriverName       = "postgres"
	defaultMaxConnections    = 8
	defaultMinConnections    = 2
	defaultMaxIdleConns      = 4
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5
)

var ErrConnectingPostgresFailed = errors.New("connecting to postgres failed")

// PostgresPGXPoolConfig parses dsn into a pgxpool.Config with the journal's pool tuning.
func PostgresPGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingPostgresFailed, err)
	}

	dbConfig.MaxConns = defaultMaxConnections
	dbConfig.MinConns = defaultMinConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig, nil
}

// OpenPostgresPGXPool creates and pings a pgx pool.
func OpenPostgresPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, errors.Join(ErrConnectingPostgresFailed, err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, errors.Join(ErrConnectingPostgresFailed, pingErr)
	}

	return pool, nil
}

// OpenPostgresSQLDB opens a database/sql connection pool with the lib/pq driver and pings it.
func OpenPostgresSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(postgresDriverName, dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingPostgresFailed, err)
	}

	tuneSQLPool(db)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectingPostgresFailed, pingErr)
	}

	return db, nil
}

// OpenPostgresSQLX opens a sqlx connection pool with the lib/pq driver and pings it.
func OpenPostgresSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(postgresDriverName, dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingPostgresFailed, err)
	}

	tuneSQLPool(db.DB)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectingPostgresFailed, pingErr)
	}

	return db, nil
}

func tuneSQLPool(db *sql.DB) {
	db.SetMaxOpenConns(defaultMaxConnections)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}

package activity

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go sqlite driver
)

//go:embed schema.sql
var schemaSQL string

const (
	sqliteDriverName     = "sqlite"
	defaultLookupTimeout = 2 * time.Second

	logMsgLookupFailed = "member lookup failed, treating reader as inactive"
	logAttrUserID      = "user_id"
	logAttrError       = "error"
)

var (
	ErrOpeningMembersDBFailed = errors.New("opening members database failed")
	ErrMigratingMembersFailed = errors.New("migrating members database failed")
	ErrUpsertingMemberFailed  = errors.New("upserting member failed")
)

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// Member is one row of the members table.
type Member struct {
	ID        string    `db:"id"`
	Active    bool      `db:"active"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SQLiteChecker answers IsActive from a SQLite members table.
// Unknown readers and failed lookups count as inactive.
type SQLiteChecker struct {
	db            *sqlx.DB
	lookupTimeout time.Duration
	logger        Logger
}

type SQLiteOption func(*SQLiteChecker)

func WithLookupTimeout(timeout time.Duration) SQLiteOption {
	return func(c *SQLiteChecker) {
		c.lookupTimeout = timeout
	}
}

func WithLogger(logger Logger) SQLiteOption {
	return func(c *SQLiteChecker) {
		c.logger = logger
	}
}

// OpenSQLiteChecker opens (or creates) the members database at path and migrates its schema.
// Use ":memory:" for a throwaway database.
func OpenSQLiteChecker(ctx context.Context, path string, options ...SQLiteOption) (*SQLiteChecker, error) {
	db, err := sqlx.Open(sqliteDriverName, path)
	if err != nil {
		return nil, errors.Join(ErrOpeningMembersDBFailed, err)
	}

	// a single connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningMembersDBFailed, err)
	}

	c := &SQLiteChecker{db: db, lookupTimeout: defaultLookupTimeout}
	for _, option := range options {
		option(c)
	}

	if err = c.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return c, nil
}

// Migrate creates the members table if it does not exist.
func (c *SQLiteChecker) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Join(ErrMigratingMembersFailed, err)
	}

	return nil
}

// Upsert creates the member or updates its active flag.
func (c *SQLiteChecker) Upsert(ctx context.Context, userID string, active bool) error {
	_, err := c.db.NamedExecContext(
		ctx,
		`INSERT INTO members (id, active, updated_at) VALUES (:id, :active, :updated_at)
		 ON CONFLICT(id) DO UPDATE SET active = excluded.active, updated_at = excluded.updated_at`,
		Member{ID: userID, Active: active, UpdatedAt: time.Now().UTC()},
	)
	if err != nil {
		return errors.Join(ErrUpsertingMemberFailed, err)
	}

	return nil
}

// Member loads one member. It returns sql.ErrNoRows for unknown readers.
func (c *SQLiteChecker) Member(ctx context.Context, userID string) (Member, error) {
	var m Member
	err := c.db.GetContext(ctx, &m, "SELECT id, active, updated_at FROM members WHERE id = ?", userID)

	return m, err
}

func (c *SQLiteChecker) IsActive(userID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.lookupTimeout)
	defer cancel()

	m, err := c.Member(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) && c.logger != nil {
			c.logger.Warn(logMsgLookupFailed, logAttrUserID, userID, logAttrError, err.Error())
		}

		return false
	}

	return m.Active
}

func (c *SQLiteChecker) Close() error {
	return c.db.Close()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/library-lending/lending-ledger/eventstore"
	"github.com/library-lending/lending-ledger/eventstore/memoryengine"
	"github.com/library-lending/lending-ledger/eventstore/postgresengine"
	"github.com/library-lending/lending-ledger/lending/activity"
	"github.com/library-lending/lending-ledger/lending/ledger"
	"github.com/library-lending/lending-ledger/lending/notification"
	"github.com/library-lending/lending-ledger/lending/shell"
	"github.com/library-lending/lending-ledger/lending/shell/config"
)

var ErrUnknownFeeSchedule = errors.New("unknown fee schedule")

// closers collects cleanup functions and runs them in reverse order.
type closers []func() error

func (c *closers) add(fn func() error) {
	*c = append(*c, fn)
}

func (c closers) closeAll() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		errs = append(errs, c[i]())
	}

	return errors.Join(errs...)
}

func feeScheduleFor(name string) (ledger.FeeSchedule, error) {
	switch name {
	case config.FeeScheduleFlat, "":
		return ledger.FlatFeeSchedule, nil
	case config.FeeScheduleTiered:
		return ledger.TieredFeeSchedule, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeeSchedule, name)
	}
}

// openJournal selects the event store engine of the lending journal and creates the Postgres schema when needed.
func openJournal(
	ctx context.Context,
	cfg config.JournalConfig,
	logger *slog.Logger,
	metrics eventstore.MetricsCollector,
	cleanup *closers,
) (shell.EventStore, error) {
	options := []postgresengine.Option{
		postgresengine.WithTableName(cfg.Table),
		postgresengine.WithLogger(logger),
		postgresengine.WithMetrics(metrics),
	}

	var (
		store postgresengine.EventStore
		err   error
	)

	switch cfg.Driver {
	case config.JournalDriverMemory:
		return memoryengine.NewEventStore(memoryengine.WithLogger(logger)), nil

	case config.JournalDriverPGX:
		pool, openErr := config.OpenPostgresPGXPool(ctx, cfg.DSN)
		if openErr != nil {
			return nil, openErr
		}

		cleanup.add(func() error { pool.Close(); return nil })
		store, err = postgresengine.NewEventStoreFromPGXPool(pool, options...)

	case config.JournalDriverSQL:
		db, openErr := config.OpenPostgresSQLDB(ctx, cfg.DSN)
		if openErr != nil {
			return nil, openErr
		}

		cleanup.add(db.Close)
		store, err = postgresengine.NewEventStoreFromSQLDB(db, options...)

	case config.JournalDriverSQLX:
		db, openErr := config.OpenPostgresSQLX(ctx, cfg.DSN)
		if openErr != nil {
			return nil, openErr
		}

		cleanup.add(db.Close)
		store, err = postgresengine.NewEventStoreFromSQLX(db, options...)

	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}

	if err != nil {
		return nil, err
	}

	if err = store.CreateSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// openActivityChecker uses the SQLite members database when configured, the static reader list otherwise.
func openActivityChecker(
	ctx context.Context,
	cfg config.MembersConfig,
	logger *slog.Logger,
	cleanup *closers,
) (ledger.ActivityChecker, error) {
	if cfg.DBPath == "" {
		return activity.NewStaticChecker(cfg.ActiveReaders...), nil
	}

	checker, err := activity.OpenSQLiteChecker(ctx, cfg.DBPath, activity.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	cleanup.add(checker.Close)

	for _, readerID := range cfg.ActiveReaders {
		if err = checker.Upsert(ctx, readerID, true); err != nil {
			return nil, err
		}
	}

	return checker, nil
}

// openNotifier always logs notifications and also publishes them when an AMQP broker is configured.
func openNotifier(cfg config.NotificationsConfig, logger *slog.Logger, cleanup *closers) (ledger.Notifier, error) {
	logNotifier := notification.NewLogNotifier(logger)

	if cfg.AMQPURL == "" {
		return logNotifier, nil
	}

	amqpNotifier, err := notification.DialAMQPNotifier(cfg.AMQPURL, cfg.Exchange, logger)
	if err != nil {
		return nil, err
	}

	cleanup.add(amqpNotifier.Close)

	return notification.FanOut{logNotifier, amqpNotifier}, nil
}

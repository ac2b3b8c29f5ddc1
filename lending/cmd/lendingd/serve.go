package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/library-lending/lending-ledger/eventstore/oteladapters"
	"github.com/library-lending/lending-ledger/lending/api"
	"github.com/library-lending/lending-ledger/lending/ledger"
	"github.com/library-lending/lending-ledger/lending/shell"
	"github.com/library-lending/lending-ledger/lending/shell/config"
	"github.com/library-lending/lending-ledger/lending/shell/logging"
)

const (
	serviceName     = "lendingd"
	shutdownTimeout = 10 * time.Second
)

func serveCmd() *cobra.Command {
	var envFile string

	flags := []*stringFlag{
		{name: "env", key: config.KeyEnv, usage: "environment: development, staging or production"},
		{name: "log-level", key: config.KeyLogLevel, usage: "debug, info, warn or error"},
		{name: "log-format", key: config.KeyLogFormat, usage: "json or text"},
		{name: "port", key: config.KeyServerPort, usage: "HTTP port"},
		{name: "cors-origins", key: config.KeyCORSOrigins, usage: "comma separated origins allowed by CORS"},
		{name: "rate-limit", key: config.KeyRateLimitRPS, usage: "requests per second per client, 0 disables"},
		{name: "journal-driver", key: config.KeyJournalDriver, usage: "memory, pgx, sql or sqlx"},
		{name: "journal-dsn", key: config.KeyJournalDSN, usage: "Postgres DSN of the lending journal"},
		{name: "journal-table", key: config.KeyJournalTable, usage: "lending journal table name"},
		{name: "active-readers", key: config.KeyActiveReaders, usage: "comma separated IDs of active readers"},
		{name: "members-db", key: config.KeyMembersDBPath, usage: "SQLite members database path"},
		{name: "amqp-url", key: config.KeyAMQPURL, usage: "RabbitMQ URL for reader notifications"},
		{name: "amqp-exchange", key: config.KeyAMQPExchange, usage: "RabbitMQ topic exchange"},
		{name: "fee-schedule", key: config.KeyFeeSchedule, usage: "flat or tiered"},
	}

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the lending ledger HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(overridesFrom(flags), envFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	bindStringFlags(c, flags)
	c.Flags().StringVar(&envFile, "env-file", ".env", "path of the .env file")

	return c
}

func serve(ctx context.Context, cfg *config.Config) (err error) {
	logger := logging.New(os.Stdout, cfg)

	var cleanup closers
	defer func() {
		err = errors.Join(err, cleanup.closeAll())
	}()

	provider, reader := oteladapters.NewMeterProvider(serviceName, version)
	otel.SetMeterProvider(provider)
	cleanup.add(func() error { return provider.Shutdown(context.Background()) })

	metrics := oteladapters.NewMetricsCollector(otel.Meter(serviceName))

	schedule, err := feeScheduleFor(cfg.Fees.Schedule)
	if err != nil {
		return err
	}

	journal, err := openJournal(ctx, cfg.Journal, logger, metrics, &cleanup)
	if err != nil {
		return err
	}

	checker, err := openActivityChecker(ctx, cfg.Members, logger, &cleanup)
	if err != nil {
		return err
	}

	notifier, err := openNotifier(cfg.Notifications, logger, &cleanup)
	if err != nil {
		return err
	}

	writer := shell.NewJournalWriter(
		journal,
		shell.WithBufferSize(cfg.Journal.BufferSize),
		shell.WithJournalLogger(logger),
		shell.WithJournalMetrics(metrics),
	)

	lendingLedger := ledger.NewLendingLedger(
		checker,
		notifier,
		ledger.WithLogger(logger),
		ledger.WithMetrics(metrics),
		ledger.WithEventRecorder(writer),
		ledger.WithFeeSchedule(schedule),
	)

	server := api.NewServer(
		lendingLedger,
		logger,
		api.WithJournal(journal),
		api.WithCORS(cfg.Server.CORSOrigins),
		api.WithRateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		api.WithMetricsSnapshot(func(ctx context.Context) ([]oteladapters.DataPoint, error) {
			return oteladapters.Snapshot(ctx, reader)
		}),
	)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	writerDone := make(chan error, 1)
	go func() { writerDone <- writer.Run(runCtx) }()

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			"addr", httpServer.Addr,
			"journal_driver", cfg.Journal.Driver,
			"fee_schedule", cfg.Fees.Schedule,
		)

		if serveErr := httpServer.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			serverDone <- serveErr
			return
		}

		serverDone <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serverDone:
		if err != nil {
			logger.Error("http server failed", "error", err.Error())
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancelShutdown()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("http server shutdown failed", "error", shutdownErr.Error())
		err = errors.Join(err, shutdownErr)
	}

	// the writer drains buffered journal events before Run returns
	cancelRun()
	err = errors.Join(err, <-writerDone)

	return err
}

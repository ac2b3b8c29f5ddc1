package shell_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/library-lending/lending-ledger/eventstore"
	"github.com/library-lending/lending-ledger/eventstore/memoryengine"
	"github.com/library-lending/lending-ledger/lending/core"
	"github.com/library-lending/lending-ledger/lending/ledger"
	"github.com/library-lending/lending-ledger/lending/shell"
	"github.com/library-lending/lending-ledger/testutil/helper"
	"github.com/library-lending/lending-ledger/testutil/testdoubles"
)

func Test_JournalWriter_WritesLedgerEvents_PerTitleStream(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	writer := shell.NewJournalWriter(store)
	l := ledger.NewLendingLedger(
		testdoubles.NewActivityCheckerStub("reader-1"),
		testdoubles.NewNotifierSpy(),
		ledger.WithEventRecorder(writer),
	)

	// act
	l.AddStock("Dune", 1)
	l.AddStock("Emma", 2)
	l.Borrow("Dune", "reader-1")
	l.ReturnCopy("Dune", "reader-1")
	runUntilDrained(t, writer)

	// assert
	history, err := shell.TitleHistory(context.Background(), store, "Dune")
	assert.NoError(t, err)
	assert.Equal(t, []string{
		core.BookStockAddedEventType,
		core.BookCopyLentToReaderEventType,
		core.BookCopyReturnedByReaderEventType,
	}, eventTypesOf(history))

	emma, err := shell.TitleHistory(context.Background(), store, "Emma")
	assert.NoError(t, err)
	assert.Len(t, emma, 1)
}

func Test_JournalWriter_DropsEvents_WhenBufferFull(t *testing.T) {
	// arrange
	logHandler := helper.NewTestLogHandler(false)
	metrics := testdoubles.NewMetricsCollectorSpy()
	writer := shell.NewJournalWriter(
		memoryengine.NewEventStore(),
		shell.WithBufferSize(1),
		shell.WithJournalLogger(slog.New(logHandler)),
		shell.WithJournalMetrics(metrics),
	)

	// act
	writer.Record(core.BuildBookStockAdded("Dune", 1, time.Now()))
	writer.Record(core.BuildBookStockAdded("Dune", 2, time.Now()))

	// assert
	assert.True(t, logHandler.HasWarnLog("journal buffer full, dropping event"))
	assert.Equal(t, 1, metrics.CountCounter("journal_events_dropped_total", nil))
}

func Test_JournalWriter_RetriesConcurrencyConflicts(t *testing.T) {
	// arrange
	store := &conflictingStore{EventStore: memoryengine.NewEventStore(), conflicts: 2}
	writer := shell.NewJournalWriter(store, shell.WithJournalRetryOptions(shell.WithBaseDelay(time.Millisecond)))

	// act
	writer.Record(core.BuildBookStockAdded("Dune", 1, time.Now()))
	runUntilDrained(t, writer)

	// assert
	events, _, err := store.Query(context.Background(), eventstore.BuildEventFilter().ForTitles("Dune").Finalize())
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 3, store.appendCalls)
}

func Test_JournalWriter_LogsFailedWrites(t *testing.T) {
	// arrange
	logHandler := helper.NewTestLogHandler(false)
	metrics := testdoubles.NewMetricsCollectorSpy()
	store := &conflictingStore{EventStore: memoryengine.NewEventStore(), conflicts: 100}
	writer := shell.NewJournalWriter(
		store,
		shell.WithJournalLogger(slog.New(logHandler)),
		shell.WithJournalMetrics(metrics),
		shell.WithJournalRetryOptions(shell.WithMaxAttempts(2), shell.WithBaseDelay(time.Millisecond)),
	)

	// act
	writer.Record(core.BuildBookStockAdded("Dune", 1, time.Now()))
	runUntilDrained(t, writer)

	// assert
	assert.True(t, logHandler.HasErrorLog("writing event to journal failed"))
	assert.Equal(t, 1, metrics.CountCounter("journal_write_failures_total", nil))
}

func Test_JournalWriter_RefusesEventsWithEmptyTitle(t *testing.T) {
	// arrange
	logHandler := helper.NewTestLogHandler(false)
	store := memoryengine.NewEventStore()
	writer := shell.NewJournalWriter(store, shell.WithJournalLogger(slog.New(logHandler)))

	// act
	writer.Record(core.BuildBookStockAdded("Dune", 1, time.Now()))
	writer.Record(core.BuildBookStockAdded("", 1, time.Now()))
	runUntilDrained(t, writer)

	// assert
	assert.True(t, logHandler.HasErrorLog("writing event to journal failed"))
	errMsg, found := logHandler.AttrOf("writing event to journal failed", "error")
	assert.True(t, found)
	assert.Contains(t, errMsg, eventstore.ErrEmptyTitle.Error())

	all, _, err := store.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Dune", all[0].Title)
}

func Test_TitleHistory_RejectsEmptyTitle(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	writer := shell.NewJournalWriter(store)
	writer.Record(core.BuildBookStockAdded("Dune", 1, time.Now()))
	runUntilDrained(t, writer)

	// act
	history, err := shell.TitleHistory(context.Background(), store, "")

	// assert
	assert.ErrorIs(t, err, shell.ErrEmptyTitle)
	assert.Empty(t, history)
}

func Test_JournalWriter_Run_RejectsSecondRun(t *testing.T) {
	// arrange
	writer := shell.NewJournalWriter(memoryengine.NewEventStore())
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		close(started)
		done <- writer.Run(ctx)
	}()
	<-started

	canceled, cancelSecond := context.WithCancel(context.Background())
	cancelSecond()

	// act
	var secondErr error
	assert.Eventually(t, func() bool {
		secondErr = writer.Run(canceled)
		return secondErr != nil
	}, time.Second, 5*time.Millisecond)

	// assert
	assert.ErrorIs(t, secondErr, shell.ErrJournalWriterAlreadyRunning)
	cancel()
	assert.NoError(t, <-done)
}

func runUntilDrained(t *testing.T, writer *shell.JournalWriter) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, writer.Run(ctx))
}

func eventTypesOf(events core.DomainEvents) []string {
	types := make([]string, 0, len(events))
	for _, event := range events {
		types = append(types, event.EventType())
	}

	return types
}

// conflictingStore rejects the first appends with a concurrency conflict.
type conflictingStore struct {
	*memoryengine.EventStore
	mu          sync.Mutex
	conflicts   int
	appendCalls int
}

func (s *conflictingStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {
	s.mu.Lock()
	s.appendCalls++
	conflict := s.appendCalls <= s.conflicts
	s.mu.Unlock()

	if conflict {
		return eventstore.ErrConcurrencyConflict
	}

	return s.EventStore.Append(ctx, filter, expectedMaxSequenceNumber, event, additionalEvents...)
}

package ledger_test

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/library-lending/lending-ledger/lending/core"
	"github.com/library-lending/lending-ledger/lending/ledger"
	"github.com/library-lending/lending-ledger/testutil/helper"
	"github.com/library-lending/lending-ledger/testutil/testdoubles"
)

func Test_AddStock_SetsAvailableCopies(t *testing.T) {
	// arrange
	l := givenLedger(testdoubles.NewActivityCheckerStub(), testdoubles.NewNotifierSpy())

	// act
	l.AddStock("Dune", 3)
	l.AddStock("Dune", 2)

	// assert
	assert.Equal(t, 5, l.AvailableCopies("Dune"))
	assert.Equal(t, 0, l.AvailableCopies("Emma"))
}

func Test_AddStock_IgnoresNegativeCount(t *testing.T) {
	// arrange
	logHandler := helper.NewTestLogHandler(false)
	recorder := testdoubles.NewEventRecorderSpy()
	l := ledger.NewLendingLedger(
		testdoubles.NewActivityCheckerStub(),
		testdoubles.NewNotifierSpy(),
		ledger.WithLogger(slog.New(logHandler)),
		ledger.WithEventRecorder(recorder),
	)
	l.AddStock("Dune", 1)

	// act
	l.AddStock("Dune", -5)

	// assert
	assert.Equal(t, 1, l.AvailableCopies("Dune"))
	assert.True(t, logHandler.HasWarnLog("ignoring negative stock count"))
	assert.Len(t, recorder.Events(), 1)
}

func Test_AddStock_DoesNotTouchBorrowRecord(t *testing.T) {
	// arrange
	l := givenLedger(testdoubles.NewActivityCheckerStub("reader-1"), testdoubles.NewNotifierSpy())
	l.AddStock("Dune", 1)
	assert.True(t, l.Borrow("Dune", "reader-1"))

	// act
	l.AddStock("Dune", 4)

	// assert
	borrower, ok := l.BorrowerOf("Dune")
	assert.True(t, ok)
	assert.Equal(t, "reader-1", borrower)
}

func Test_Borrow_Success_WhenReaderActiveAndCopyAvailable(t *testing.T) {
	// arrange
	notifier := testdoubles.NewNotifierSpy()
	l := givenLedger(testdoubles.NewActivityCheckerStub("user"), notifier)
	l.AddStock("book", 2)

	// act
	borrowed := l.Borrow("book", "user")

	// assert
	assert.True(t, borrowed)
	assert.Equal(t, 1, l.AvailableCopies("book"))
	assertBorrower(t, l, "book", "user")
	assert.Equal(t,
		[]testdoubles.Notification{{UserID: "user", Message: "You have borrowed the book: book"}},
		notifier.Notifications(),
	)
}

func Test_Borrow_Fails_WhenNoCopiesLeft(t *testing.T) {
	// arrange
	notifier := testdoubles.NewNotifierSpy()
	l := givenLedger(testdoubles.NewActivityCheckerStub("user"), notifier)
	l.AddStock("book", 2)
	assert.True(t, l.Borrow("book", "user"))
	l.AddStock("book", 0)
	assert.True(t, l.Borrow("book", "user"))

	// act
	borrowed := l.Borrow("book", "user")

	// assert
	assert.False(t, borrowed)
	assert.Equal(t, 0, l.AvailableCopies("book"))
	assert.Equal(t, 2, notifier.Count(), "a missing copy is not notified")
}

func Test_Borrow_Fails_ForUnknownTitle(t *testing.T) {
	// arrange
	notifier := testdoubles.NewNotifierSpy()
	l := givenLedger(testdoubles.NewActivityCheckerStub("user"), notifier)

	// act
	borrowed := l.Borrow("Emma", "user")

	// assert
	assert.False(t, borrowed)
	assert.Equal(t, 0, l.AvailableCopies("Emma"))
	assert.Zero(t, notifier.Count())
}

func Test_Borrow_Fails_AndNotifies_WhenAccountInactive(t *testing.T) {
	// arrange
	notifier := testdoubles.NewNotifierSpy()
	l := givenLedger(testdoubles.NewActivityCheckerStub(), notifier)
	l.AddStock("Dune", 1)

	// act
	borrowed := l.Borrow("Dune", "sleeper")

	// assert
	assert.False(t, borrowed)
	assert.Equal(t, 1, l.AvailableCopies("Dune"))
	_, hasLoan := l.BorrowerOf("Dune")
	assert.False(t, hasLoan)
	assert.Equal(t,
		[]testdoubles.Notification{{UserID: "sleeper", Message: "Your account is not active."}},
		notifier.Notifications(),
	)
}

func Test_Borrow_InactiveAccount_IsNotified_EvenWithoutStock(t *testing.T) {
	// arrange
	notifier := testdoubles.NewNotifierSpy()
	l := givenLedger(testdoubles.NewActivityCheckerStub(), notifier)

	// act
	borrowed := l.Borrow("Dune", "sleeper")

	// assert
	assert.False(t, borrowed)
	assert.Equal(t, "Your account is not active.", notifier.Notifications()[0].Message)
}

func Test_Borrow_BySecondReader_OverwritesTheSingleLoanSlot(t *testing.T) {
	// arrange
	l := givenLedger(testdoubles.NewActivityCheckerStub("reader-1", "reader-2"), testdoubles.NewNotifierSpy())
	l.AddStock("Dune", 2)
	assert.True(t, l.Borrow("Dune", "reader-1"))

	// act
	borrowed := l.Borrow("Dune", "reader-2")

	// assert
	assert.True(t, borrowed)
	assert.Equal(t, 0, l.AvailableCopies("Dune"))
	assertBorrower(t, l, "Dune", "reader-2")
	assert.False(t, l.ReturnCopy("Dune", "reader-1"))
}

func Test_ReturnCopy_Success_WhenBorrowerMatches(t *testing.T) {
	// arrange
	notifier := testdoubles.NewNotifierSpy()
	l := givenLedger(testdoubles.NewActivityCheckerStub("reader-1"), notifier)
	l.AddStock("Dune", 1)
	assert.True(t, l.Borrow("Dune", "reader-1"))

	// act
	returned := l.ReturnCopy("Dune", "reader-1")

	// assert
	assert.True(t, returned)
	assert.Equal(t, 1, l.AvailableCopies("Dune"))
	_, hasLoan := l.BorrowerOf("Dune")
	assert.False(t, hasLoan)
	assert.Equal(t, testdoubles.Notification{UserID: "reader-1", Message: "You have returned the book: Dune"},
		notifier.Notifications()[1])
}

func Test_ReturnCopy_Fails_AndLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		arrange  func(l *ledger.LendingLedger)
		title    string
		readerID string
	}{
		{
			name:     "never borrowed",
			arrange:  func(l *ledger.LendingLedger) { l.AddStock("Dune", 1) },
			title:    "Dune",
			readerID: "reader-1",
		},
		{
			name: "borrowed by another reader",
			arrange: func(l *ledger.LendingLedger) {
				l.AddStock("Dune", 1)
				l.Borrow("Dune", "reader-2")
			},
			title:    "Dune",
			readerID: "reader-1",
		},
		{
			name: "already returned",
			arrange: func(l *ledger.LendingLedger) {
				l.AddStock("Dune", 1)
				l.Borrow("Dune", "reader-1")
				l.ReturnCopy("Dune", "reader-1")
			},
			title:    "Dune",
			readerID: "reader-1",
		},
		{
			name:     "unknown title",
			arrange:  func(*ledger.LendingLedger) {},
			title:    "Emma",
			readerID: "reader-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			notifier := testdoubles.NewNotifierSpy()
			l := givenLedger(testdoubles.NewActivityCheckerStub("reader-1", "reader-2"), notifier)
			tt.arrange(l)
			copiesBefore := l.AvailableCopies(tt.title)
			borrowerBefore, hasLoanBefore := l.BorrowerOf(tt.title)
			notificationsBefore := notifier.Count()

			// act
			returned := l.ReturnCopy(tt.title, tt.readerID)

			// assert
			assert.False(t, returned)
			assert.Equal(t, copiesBefore, l.AvailableCopies(tt.title))
			borrowerAfter, hasLoanAfter := l.BorrowerOf(tt.title)
			assert.Equal(t, borrowerBefore, borrowerAfter)
			assert.Equal(t, hasLoanBefore, hasLoanAfter)
			assert.Equal(t, notificationsBefore, notifier.Count())
		})
	}
}

func Test_Ledger_RecordsDomainEvents_InStateChangeOrder(t *testing.T) {
	// arrange
	recorder := testdoubles.NewEventRecorderSpy()
	fixedNow := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := ledger.NewLendingLedger(
		testdoubles.NewActivityCheckerStub("reader-1"),
		testdoubles.NewNotifierSpy(),
		ledger.WithEventRecorder(recorder),
		ledger.WithClock(func() time.Time { return fixedNow }),
	)

	// act
	l.AddStock("Dune", 1)
	l.Borrow("Dune", "reader-1")
	l.Borrow("Dune", "reader-1")
	l.Borrow("Dune", "sleeper")
	l.ReturnCopy("Dune", "reader-2")
	l.ReturnCopy("Dune", "reader-1")

	// assert
	assert.Equal(t, []string{
		core.BookStockAddedEventType,
		core.BookCopyLentToReaderEventType,
		core.LendingBookToReaderFailedEventType,
		core.LendingBookToReaderFailedEventType,
		core.ReturningBookFromReaderFailedEventType,
		core.BookCopyReturnedByReaderEventType,
	}, recorder.EventTypes())

	events := recorder.Events()
	assert.Equal(t, core.BuildLendingBookToReaderFailed("Dune", "reader-1", core.FailureNoCopiesAvailable, fixedNow), events[2])
	assert.Equal(t, core.BuildLendingBookToReaderFailed("Dune", "sleeper", core.FailureReaderAccountNotActive, fixedNow), events[3])
	assert.Equal(t, core.BuildReturningBookFromReaderFailed("Dune", "reader-2", core.FailureBookIsLentToOtherReader, fixedNow), events[4])
}

func Test_Ledger_CountsOutcomes(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	l := ledger.NewLendingLedger(
		testdoubles.NewActivityCheckerStub("reader-1"),
		testdoubles.NewNotifierSpy(),
		ledger.WithMetrics(metrics),
	)

	// act
	l.AddStock("Dune", 1)
	l.Borrow("Dune", "reader-1")
	l.Borrow("Dune", "reader-1")
	l.Borrow("Dune", "sleeper")
	l.ReturnCopy("Emma", "reader-1")
	_, _ = l.ComputeLateFee(-1, false, false)

	// assert
	assert.Equal(t, 1, metrics.CountCounter("ledger_stock_added_total", nil))
	assert.Equal(t, 1, metrics.CountCounter("ledger_borrow_total", map[string]string{"outcome": "success"}))
	assert.Equal(t, 1, metrics.CountCounter("ledger_borrow_total", map[string]string{"outcome": "no_copies"}))
	assert.Equal(t, 1, metrics.CountCounter("ledger_borrow_total", map[string]string{"outcome": "inactive"}))
	assert.Equal(t, 1, metrics.CountCounter("ledger_return_total", map[string]string{"outcome": "not_lent"}))
	assert.Equal(t, 1, metrics.CountCounter("ledger_late_fee_computed_total", map[string]string{"outcome": "invalid_input"}))
}

func Test_Borrow_ConcurrentCallers_NeverOverdrawStock(t *testing.T) {
	// arrange
	readers := make([]string, 50)
	for i := range readers {
		readers[i] = "reader-" + string(rune('A'+i))
	}

	l := givenLedger(testdoubles.NewActivityCheckerStub(readers...), testdoubles.NewNotifierSpy())
	l.AddStock("Dune", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	// act
	for _, reader := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Borrow("Dune", reader) {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// assert
	assert.Equal(t, 10, successes)
	assert.Equal(t, 0, l.AvailableCopies("Dune"))
}

func givenLedger(checker ledger.ActivityChecker, notifier ledger.Notifier) *ledger.LendingLedger {
	return ledger.NewLendingLedger(checker, notifier)
}

func assertBorrower(t *testing.T, l *ledger.LendingLedger, title, expected string) {
	t.Helper()

	borrower, ok := l.BorrowerOf(title)
	assert.True(t, ok, "title %q should have a borrow record", title)
	assert.Equal(t, expected, borrower)
}

func Test_Ledger_EndToEndScenario(t *testing.T) {
	// arrange
	notifier := testdoubles.NewNotifierSpy()
	l := givenLedger(testdoubles.NewActivityCheckerStub("user"), notifier)

	// act & assert
	l.AddStock("book", 2)
	assert.True(t, l.Borrow("book", "user"))
	assert.Equal(t, 1, l.AvailableCopies("book"))
	assert.Equal(t, []testdoubles.Notification{{UserID: "user", Message: "You have borrowed the book: book"}}, notifier.Notifications())

	l.AddStock("empty shelf", 0)
	assert.False(t, l.Borrow("empty shelf", "user"))
	assert.Equal(t, 0, l.AvailableCopies("empty shelf"))
	assert.Equal(t, 1, notifier.Count())
}

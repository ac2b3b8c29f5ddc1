package ledger

import (
	"sync"
	"time"

	"github.com/library-lending/lending-ledger/lending/core"
)

const (
	msgAccountNotActive = "Your account is not active."
	msgBorrowedPrefix   = "You have borrowed the book: "
	msgReturnedPrefix   = "You have returned the book: "

	metricBorrow        = "ledger_borrow_total"
	metricReturn        = "ledger_return_total"
	metricStockAdded    = "ledger_stock_added_total"
	metricLateFee       = "ledger_late_fee_computed_total"
	labelOutcome        = "outcome"
	outcomeSuccess      = "success"
	outcomeInactive     = "inactive"
	outcomeNoCopies     = "no_copies"
	outcomeNotLent      = "not_lent"
	outcomeOtherReader  = "other_reader"
	outcomeInvalidInput = "invalid_input"

	logMsgNegativeStock = "ignoring negative stock count"
	logMsgDecision      = "ledger decision"
	logAttrTitle        = "title"
	logAttrCount        = "count"
	logAttrEventType    = "event_type"
)

// LendingLedger owns the inventory table (title to available copies) and the borrow-record table
// (title to outstanding borrower). It is safe for concurrent use.
type LendingLedger struct {
	mu        sync.Mutex
	inventory map[core.TitleString]int
	borrowers map[core.TitleString]core.ReaderIDString

	checker     ActivityChecker
	notifier    Notifier
	recorder    EventRecorder
	logger      Logger
	metrics     MetricsCollector
	now         func() time.Time
	feeSchedule FeeSchedule
}

// NewLendingLedger creates an empty ledger consulting checker before each borrow and sending
// user-facing messages through notifier.
func NewLendingLedger(checker ActivityChecker, notifier Notifier, options ...Option) *LendingLedger {
	l := &LendingLedger{
		inventory:   make(map[core.TitleString]int),
		borrowers:   make(map[core.TitleString]core.ReaderIDString),
		checker:     checker,
		notifier:    notifier,
		now:         time.Now,
		feeSchedule: FlatFeeSchedule,
	}

	for _, option := range options {
		option(l)
	}

	return l
}

// AddStock increases the available copies of the title by count, creating the title at zero first.
// A negative count is ignored and logged.
func (l *LendingLedger) AddStock(title string, count int) {
	if count < 0 {
		if l.logger != nil {
			l.logger.Warn(logMsgNegativeStock, logAttrTitle, title, logAttrCount, count)
		}

		return
	}

	l.mu.Lock()
	event := core.BuildBookStockAdded(title, count, l.now())
	l.apply(event)
	l.record(event)
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.IncrementCounter(metricStockAdded, nil)
	}
}

// AvailableCopies returns the free copies of the title, zero for unknown titles.
func (l *LendingLedger) AvailableCopies(title string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.inventory[title]
}

// BorrowerOf returns the reader holding the loan of the title, if any.
func (l *LendingLedger) BorrowerOf(title string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	borrower, ok := l.borrowers[title]

	return borrower, ok
}

// Borrow lends a copy of the title to the borrower if the borrower is active and a copy is available.
// An inactive borrower is notified, a missing copy is not.
func (l *LendingLedger) Borrow(title, borrowerID string) bool {
	readerIsActive := l.checker.IsActive(borrowerID)

	l.mu.Lock()
	result := decideBorrow(l.stateOf(title), title, borrowerID, readerIsActive, l.now())
	l.commit(result)
	l.mu.Unlock()

	l.notifyAbout(result.Event)
	l.countOutcome(metricBorrow, result)

	return result.Accepted()
}

// ReturnCopy takes back the copy of the title if the borrower holds its loan.
func (l *LendingLedger) ReturnCopy(title, borrowerID string) bool {
	l.mu.Lock()
	result := decideReturn(l.stateOf(title), title, borrowerID, l.now())
	l.commit(result)
	l.mu.Unlock()

	l.notifyAbout(result.Event)
	l.countOutcome(metricReturn, result)

	return result.Accepted()
}

// ComputeLateFee returns the late fee for overdueDays, with a bestseller surcharge of 50% and
// then a premium member discount of 20%. Negative days yield an *InvalidArgumentError.
func (l *LendingLedger) ComputeLateFee(overdueDays int, isBestseller, isPremiumMember bool) (float64, error) {
	fee, err := lateFee(l.feeSchedule, overdueDays, isBestseller, isPremiumMember)

	if l.metrics != nil {
		outcome := outcomeSuccess
		if err != nil {
			outcome = outcomeInvalidInput
		}

		l.metrics.IncrementCounter(metricLateFee, map[string]string{labelOutcome: outcome})
	}

	return fee, err
}

// stateOf must be called with l.mu held.
func (l *LendingLedger) stateOf(title core.TitleString) titleState {
	borrower, hasLoan := l.borrowers[title]

	return titleState{
		available: l.inventory[title],
		hasLoan:   hasLoan,
		borrower:  borrower,
	}
}

// commit must be called with l.mu held.
func (l *LendingLedger) commit(result core.DecisionResult) {
	if result.Accepted() {
		l.apply(result.Event)
	}

	l.record(result.Event)

	if l.logger != nil {
		l.logger.Debug(logMsgDecision, logAttrTitle, result.Event.HasTitle(), logAttrEventType, result.Event.EventType())
	}
}

func (l *LendingLedger) apply(event core.DomainEvent) {
	switch e := event.(type) {
	case core.BookStockAdded:
		l.inventory[e.Title] += e.Count

	case core.BookCopyLentToReader:
		l.inventory[e.Title]--
		l.borrowers[e.Title] = e.ReaderID

	case core.BookCopyReturnedByReader:
		l.inventory[e.Title]++
		delete(l.borrowers, e.Title)
	}
}

func (l *LendingLedger) record(event core.DomainEvent) {
	if l.recorder != nil {
		l.recorder.Record(event)
	}
}

func (l *LendingLedger) notifyAbout(event core.DomainEvent) {
	switch e := event.(type) {
	case core.BookCopyLentToReader:
		l.notifier.Notify(e.ReaderID, msgBorrowedPrefix+e.Title)

	case core.BookCopyReturnedByReader:
		l.notifier.Notify(e.ReaderID, msgReturnedPrefix+e.Title)

	case core.LendingBookToReaderFailed:
		if e.FailureInfo == core.FailureReaderAccountNotActive {
			l.notifier.Notify(e.ReaderID, msgAccountNotActive)
		}
	}
}

func (l *LendingLedger) countOutcome(metric string, result core.DecisionResult) {
	if l.metrics == nil {
		return
	}

	l.metrics.IncrementCounter(metric, map[string]string{labelOutcome: outcomeOf(result.Event)})
}

func outcomeOf(event core.DomainEvent) string {
	var failureInfo string

	switch e := event.(type) {
	case core.LendingBookToReaderFailed:
		failureInfo = e.FailureInfo
	case core.ReturningBookFromReaderFailed:
		failureInfo = e.FailureInfo
	default:
		return outcomeSuccess
	}

	switch failureInfo {
	case core.FailureReaderAccountNotActive:
		return outcomeInactive
	case core.FailureNoCopiesAvailable:
		return outcomeNoCopies
	case core.FailureBookIsNotLent:
		return outcomeNotLent
	default:
		return outcomeOtherReader
	}
}

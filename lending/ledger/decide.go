package ledger

import (
	"time"

	"github.com/library-lending/lending-ledger/lending/core"
)

// titleState is the part of the ledger tables a decision about one title depends on.
type titleState struct {
	available int
	hasLoan   bool
	borrower  core.ReaderIDString
}

// decideBorrow decides whether a copy of the title is lent to the reader.
//
//	GIVEN: the reader's activity and the title's state
//	THEN: BookCopyLentToReader if the reader is active and a copy is available
//	ERROR: "reader account is not active", checked first
//	ERROR: "no copies available"
func decideBorrow(
	s titleState,
	title core.TitleString,
	readerID core.ReaderIDString,
	readerIsActive bool,
	now time.Time,
) core.DecisionResult {

	if !readerIsActive {
		return core.FailureDecision(
			core.BuildLendingBookToReaderFailed(title, readerID, core.FailureReaderAccountNotActive, now),
		)
	}

	if s.available <= 0 {
		return core.FailureDecision(
			core.BuildLendingBookToReaderFailed(title, readerID, core.FailureNoCopiesAvailable, now),
		)
	}

	return core.SuccessDecision(core.BuildBookCopyLentToReader(title, readerID, now))
}

// decideReturn decides whether the reader's copy of the title is taken back.
//
//	THEN: BookCopyReturnedByReader if the title's loan is held by the reader
//	ERROR: "book is not lent" if the title has no loan
//	ERROR: "book is lent to another reader"
func decideReturn(
	s titleState,
	title core.TitleString,
	readerID core.ReaderIDString,
	now time.Time,
) core.DecisionResult {

	if !s.hasLoan {
		return core.FailureDecision(
			core.BuildReturningBookFromReaderFailed(title, readerID, core.FailureBookIsNotLent, now),
		)
	}

	if s.borrower != readerID {
		return core.FailureDecision(
			core.BuildReturningBookFromReaderFailed(title, readerID, core.FailureBookIsLentToOtherReader, now),
		)
	}

	return core.SuccessDecision(core.BuildBookCopyReturnedByReader(title, readerID, now))
}

// Package ledger implements the lending ledger: per-title inventory counts, the outstanding borrower
// of each title, and the late fee for overdue returns.
//
// Each title has a single loan slot. While one reader holds a copy of a title, a borrow record names
// that reader; a second successful Borrow of the same title overwrites the record even when more
// copies are on the shelf. ReturnCopy only accepts the reader named in the record.
//
// Titles are expected to be non-empty. The journal refuses events of an empty title.
//
// Borrowing is gated by an ActivityChecker, and user-facing messages go out through a Notifier.
// Every decision is also expressed as a domain event (see package core) that is handed to an optional
// EventRecorder.
package ledger

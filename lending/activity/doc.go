// Package activity provides ActivityChecker implementations for the lending ledger:
// a static set of active readers, and a SQLite members database.
package activity

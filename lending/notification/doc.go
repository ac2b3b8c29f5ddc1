// Package notification provides Notifier implementations for the lending ledger.
//
// Delivery is fire-and-forget: failures are logged and never reach the ledger.
package notification

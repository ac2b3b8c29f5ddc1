// Package testdoubles provides hand-written spies and stubs for the collaborators of the lending ledger
// and its infrastructure: activity checkers, notifiers, event recorders and metrics collectors.
package testdoubles

// Package core contains the domain events of the lending ledger:
// stock arriving for a title, copies being lent and returned, and the failed attempts to do so.
//
// Every ledger decision is expressed as exactly one of these events. The ledger applies successful
// events to its tables, and all events are handed to the optional event recorder, which writes them
// to the lending journal.
package core

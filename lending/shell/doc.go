// Package shell connects the lending ledger to the lending journal.
//
// It maps domain events to storable events and back, writes the events the ledger records to an
// event store in the background, and reads the journal of a title.
//
// In Hexagonal Architecture terminology, this is part of the 'adapters' layer.
package shell

package testdoubles

import (
	"sync"

	"github.com/library-lending/lending-ledger/lending/core"
)

// EventRecorderSpy captures the domain events handed over by the ledger.
type EventRecorderSpy struct {
	mu     sync.Mutex
	events []core.DomainEvent
}

func NewEventRecorderSpy() *EventRecorderSpy {
	return &EventRecorderSpy{}
}

func (s *EventRecorderSpy) Record(event core.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *EventRecorderSpy) Events() []core.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]core.DomainEvent(nil), s.events...)
}

// EventTypes returns the event types in recording order.
func (s *EventRecorderSpy) EventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make([]string, 0, len(s.events))
	for _, event := range s.events {
		types = append(types, event.EventType())
	}

	return types
}

package testdoubles

import (
	"sync"
)

// ActivityCheckerStub answers IsActive from a fixed set of active user IDs and counts the calls.
type ActivityCheckerStub struct {
	mu     sync.Mutex
	active map[string]bool
	calls  []string
}

func NewActivityCheckerStub(activeUserIDs ...string) *ActivityCheckerStub {
	active := make(map[string]bool, len(activeUserIDs))
	for _, id := range activeUserIDs {
		active[id] = true
	}

	return &ActivityCheckerStub{active: active}
}

func (s *ActivityCheckerStub) IsActive(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, userID)

	return s.active[userID]
}

// Deactivate marks the user as inactive for subsequent calls.
func (s *ActivityCheckerStub) Deactivate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, userID)
}

func (s *ActivityCheckerStub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}

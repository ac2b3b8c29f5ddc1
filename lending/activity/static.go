package activity

import (
	"sync"
)

// StaticChecker treats exactly the configured reader IDs as active.
type StaticChecker struct {
	mu     sync.RWMutex
	active map[string]struct{}
}

func NewStaticChecker(activeReaderIDs ...string) *StaticChecker {
	c := &StaticChecker{active: make(map[string]struct{}, len(activeReaderIDs))}
	for _, id := range activeReaderIDs {
		c.active[id] = struct{}{}
	}

	return c
}

func (c *StaticChecker) IsActive(userID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.active[userID]

	return ok
}

// SetActive activates or deactivates a reader.
func (c *StaticChecker) SetActive(userID string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if active {
		c.active[userID] = struct{}{}
		return
	}

	delete(c.active, userID)
}

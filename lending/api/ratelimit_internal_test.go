package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_clientRateLimiter_EvictsIdleClients(t *testing.T) {
	// arrange
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter := newClientRateLimiter(1, 1)
	limiter.now = func() time.Time { return now }
	limiter.lastSweep = now

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
	assert.False(t, limiter.allow("10.0.0.1"))

	// act
	now = now.Add(clientIdleTimeout)
	allowedAfterIdle := limiter.allow("10.0.0.3")

	// assert
	assert.True(t, allowedAfterIdle)
	assert.Equal(t, 1, limiter.tracked())
}

func Test_clientRateLimiter_KeepsActiveClients(t *testing.T) {
	// arrange
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter := newClientRateLimiter(0.001, 1)
	limiter.now = func() time.Time { return now }
	limiter.lastSweep = now

	assert.True(t, limiter.allow("10.0.0.1"))
	now = now.Add(clientIdleTimeout / 2)
	assert.False(t, limiter.allow("10.0.0.1"))

	// act
	now = now.Add(clientIdleTimeout / 2)
	allowed := limiter.allow("10.0.0.1")

	// assert
	assert.False(t, allowed, "an active client keeps its drained bucket")
	assert.Equal(t, 1, limiter.tracked())
}

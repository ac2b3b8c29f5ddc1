package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

const clientIdleTimeout = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientRateLimiter keeps one token bucket per client IP. Buckets of clients idle for
// clientIdleTimeout are evicted, at most once per clientIdleTimeout.
type clientRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newClientRateLimiter(requestsPerSecond float64, burst int) *clientRateLimiter {
	return &clientRateLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Limit(requestsPerSecond),
		burst:     burst,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (l *clientRateLimiter) allow(client string) bool {
	l.mu.Lock()
	now := l.now()

	if now.Sub(l.lastSweep) >= clientIdleTimeout {
		l.evictIdle(now)
	}

	c, exists := l.clients[client]
	if !exists {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

func (l *clientRateLimiter) evictIdle(now time.Time) {
	for client, c := range l.clients {
		if now.Sub(c.lastSeen) >= clientIdleTimeout {
			delete(l.clients, client)
		}
	}

	l.lastSweep = now
}

func (l *clientRateLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.clients)
}

// rateLimit answers 429 once a client IP exhausted its bucket. It runs after middleware.RealIP.
func (s *Server) rateLimit(limiter *clientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r)

			if !limiter.allow(client) {
				s.logger.Warn("rate limit exceeded", "ip", client, "path", r.URL.Path)
				writeTooManyRequests(w)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func writeTooManyRequests(w http.ResponseWriter) {
	body, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(huma.ErrorModel{
		Title:  http.StatusText(http.StatusTooManyRequests),
		Status: http.StatusTooManyRequests,
		Detail: "Too many requests. Please try again later.",
	})

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write(body)
}

// Package api exposes the lending ledger over HTTP with chi and huma.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/library-lending/lending-ledger/eventstore/oteladapters"
	"github.com/library-lending/lending-ledger/lending/shell"
)

const (
	apiTitle   = "Lending Ledger API"
	apiVersion = "1.0.0"
)

// Ledger is the part of *ledger.LendingLedger the API serves.
type Ledger interface {
	AddStock(title string, count int)
	AvailableCopies(title string) int
	BorrowerOf(title string) (string, bool)
	Borrow(title, borrowerID string) bool
	ReturnCopy(title, borrowerID string) bool
	ComputeLateFee(overdueDays int, isBestseller, isPremiumMember bool) (float64, error)
}

// MetricsSnapshotFunc returns the current metric data points.
type MetricsSnapshotFunc func(ctx context.Context) ([]oteladapters.DataPoint, error)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	ledger      Ledger
	journal     shell.QueriesEvents
	snapshot    MetricsSnapshotFunc
	corsOrigins []string
	rateLimiter *clientRateLimiter
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
}

type ServerOption func(*Server)

// WithJournal enables GET /api/v1/titles/{title}/journal.
func WithJournal(journal shell.QueriesEvents) ServerOption {
	return func(s *Server) {
		s.journal = journal
	}
}

// WithMetricsSnapshot enables GET /api/v1/metrics.
func WithMetricsSnapshot(snapshot MetricsSnapshotFunc) ServerOption {
	return func(s *Server) {
		s.snapshot = snapshot
	}
}

// WithCORS allows browser clients from the given origins. "*" allows every origin.
func WithCORS(allowedOrigins []string) ServerOption {
	return func(s *Server) {
		s.corsOrigins = allowedOrigins
	}
}

// WithRateLimit limits every client IP to requestsPerSecond with the given burst.
// A non-positive rate disables the limit.
func WithRateLimit(requestsPerSecond float64, burst int) ServerOption {
	return func(s *Server) {
		if requestsPerSecond <= 0 {
			s.rateLimiter = nil
			return
		}

		s.rateLimiter = newClientRateLimiter(requestsPerSecond, max(burst, 1))
	}
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(ledger Ledger, logger *slog.Logger, options ...ServerOption) *Server {
	s := &Server{
		ledger: ledger,
		router: chi.NewRouter(),
		logger: logger,
	}

	for _, option := range options {
		option(s)
	}

	s.setupMiddleware()

	s.api = humachi.New(s.router, huma.DefaultConfig(apiTitle, apiVersion))

	s.registerHealthRoutes()
	s.registerInventoryRoutes()
	s.registerLendingRoutes()
	s.registerFeeRoutes()
	s.registerJournalRoutes()
	s.registerMetricsRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, e.g. for wrapping it in tests.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(s.corsOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	if s.rateLimiter != nil {
		s.router.Use(s.rateLimit(s.rateLimiter))
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

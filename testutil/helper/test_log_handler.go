// Package helper contains test helpers shared by the package tests of this module.
package helper

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// TestLogHandler is a slog.Handler implementation that captures log records for testing.
type TestLogHandler struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewTestLogHandler creates a new TestLogHandler.
// Switchable to log to stdout, which can be useful for debugging tests by seeing the actual log output.
func NewTestLogHandler(logToStdOut bool) *TestLogHandler {
	return &TestLogHandler{
		records:     make([]slog.Record, 0),
		logToStdout: logToStdOut,
	}
}

// Handle implements slog.Handler interface.
func (h *TestLogHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record.Clone())

	if h.logToStdout {
		_ = slog.NewJSONHandler(os.Stdout, nil).Handle(ctx, record)
	}

	return nil
}

// Enabled implements slog.Handler interface.
func (h *TestLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler interface.
func (h *TestLogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler interface.
func (h *TestLogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// GetRecords returns a copy of all captured log records.
func (h *TestLogHandler) GetRecords() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	records := make([]slog.Record, len(h.records))
	copy(records, h.records)

	return records
}

// Reset clears all captured log records.
func (h *TestLogHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = h.records[:0]
}

func (h *TestLogHandler) HasDebugLog(message string) bool {
	return h.hasLog(slog.LevelDebug, message)
}

func (h *TestLogHandler) HasInfoLog(message string) bool {
	return h.hasLog(slog.LevelInfo, message)
}

func (h *TestLogHandler) HasWarnLog(message string) bool {
	return h.hasLog(slog.LevelWarn, message)
}

func (h *TestLogHandler) HasErrorLog(message string) bool {
	return h.hasLog(slog.LevelError, message)
}

// AttrOf returns the string value of the attribute key of the first record with the message.
func (h *TestLogHandler) AttrOf(message, key string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, record := range h.records {
		if record.Message != message {
			continue
		}

		value, found := "", false
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == key {
				value, found = attr.Value.String(), true
				return false
			}

			return true
		})

		if found {
			return value, true
		}
	}

	return "", false
}

func (h *TestLogHandler) hasLog(level slog.Level, message string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, record := range h.records {
		if record.Level == level && record.Message == message {
			return true
		}
	}

	return false
}

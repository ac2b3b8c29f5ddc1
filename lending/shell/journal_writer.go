package shell

import (
	"context"
	"errors"
	"time"

	"github.com/library-lending/lending-ledger/eventstore"
	"github.com/library-lending/lending-ledger/lending/core"
)

const (
	defaultJournalBuffer = 1024
	defaultDrainTimeout  = 5 * time.Second

	eventsDroppedMetric = "journal_events_dropped_total"
	eventsWrittenMetric = "journal_events_written_total"
	writeFailedMetric   = "journal_write_failures_total"
	retryOperation      = "journal_append"

	logMsgEventDropped = "journal buffer full, dropping event"
	logMsgWriteFailed  = "writing event to journal failed"
	logMsgDrained      = "journal writer drained"
	logAttrEventType   = "event_type"
	logAttrTitle       = "title"
	logAttrError       = "error"
	logAttrPending     = "pending"
)

// ErrJournalWriterAlreadyRunning is returned when Run is called twice.
var ErrJournalWriterAlreadyRunning = errors.New("journal writer is already running")

// JournalWriter appends the domain events the ledger records to an EventStore.
//
// Record never blocks: events are buffered and written by Run in recording order. When the buffer
// is full the event is dropped, logged and counted. Each append queries the title stream first and
// guards the append with its max sequence number, conflicts are retried with exponential backoff.
type JournalWriter struct {
	store        EventStore
	events       chan core.DomainEvent
	running      chan struct{}
	logger       Logger
	metrics      MetricsCollector
	retryOptions []RetryOption
	drainTimeout time.Duration
}

// JournalWriterOption defines a functional option for configuring the JournalWriter.
type JournalWriterOption func(*JournalWriter)

// WithBufferSize sets how many events may wait for Run, values below 1 keep the default.
func WithBufferSize(size int) JournalWriterOption {
	return func(w *JournalWriter) {
		if size > 0 {
			w.events = make(chan core.DomainEvent, size)
		}
	}
}

func WithJournalLogger(logger Logger) JournalWriterOption {
	return func(w *JournalWriter) {
		w.logger = logger
	}
}

func WithJournalMetrics(collector MetricsCollector) JournalWriterOption {
	return func(w *JournalWriter) {
		w.metrics = collector
		if collector != nil {
			w.retryOptions = append(w.retryOptions, WithRetryMetrics(collector, retryOperation))
		}
	}
}

// WithJournalRetryOptions passes options to RetryWithExponentialBackoff for every append.
func WithJournalRetryOptions(options ...RetryOption) JournalWriterOption {
	return func(w *JournalWriter) {
		w.retryOptions = append(w.retryOptions, options...)
	}
}

// WithDrainTimeout limits how long Run keeps writing buffered events after its context is canceled.
func WithDrainTimeout(timeout time.Duration) JournalWriterOption {
	return func(w *JournalWriter) {
		w.drainTimeout = timeout
	}
}

// NewJournalWriter creates a JournalWriter, it does nothing until Run is started.
func NewJournalWriter(store EventStore, options ...JournalWriterOption) *JournalWriter {
	w := &JournalWriter{
		store:        store,
		events:       make(chan core.DomainEvent, defaultJournalBuffer),
		running:      make(chan struct{}, 1),
		drainTimeout: defaultDrainTimeout,
	}

	for _, option := range options {
		option(w)
	}

	return w
}

// Record implements ledger.EventRecorder.
func (w *JournalWriter) Record(event core.DomainEvent) {
	select {
	case w.events <- event:
	default:
		if w.logger != nil {
			w.logger.Warn(logMsgEventDropped, logAttrEventType, event.EventType(), logAttrTitle, event.HasTitle())
		}

		if w.metrics != nil {
			w.metrics.IncrementCounter(eventsDroppedMetric, map[string]string{logAttrEventType: event.EventType()})
		}
	}
}

// Run writes recorded events until ctx is canceled, then writes what is still buffered
// within the drain timeout and returns.
func (w *JournalWriter) Run(ctx context.Context) error {
	select {
	case w.running <- struct{}{}:
		defer func() { <-w.running }()
	default:
		return ErrJournalWriterAlreadyRunning
	}

	for {
		if ctx.Err() != nil {
			w.drain(ctx)
			return nil
		}

		select {
		case event := <-w.events:
			w.write(ctx, event)

		case <-ctx.Done():
			w.drain(ctx)
			return nil
		}
	}
}

func (w *JournalWriter) drain(ctx context.Context) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.drainTimeout)
	defer cancel()

	pending := len(w.events)
	for range pending {
		w.write(drainCtx, <-w.events)
	}

	if w.logger != nil {
		w.logger.Info(logMsgDrained, logAttrPending, pending)
	}
}

func (w *JournalWriter) write(ctx context.Context, event core.DomainEvent) {
	err := w.append(ctx, event)
	if err == nil {
		if w.metrics != nil {
			w.metrics.IncrementCounter(eventsWrittenMetric, map[string]string{logAttrEventType: event.EventType()})
		}

		return
	}

	if w.logger != nil {
		w.logger.Error(
			logMsgWriteFailed,
			logAttrError, err.Error(),
			logAttrEventType, event.EventType(),
			logAttrTitle, event.HasTitle(),
		)
	}

	if w.metrics != nil {
		w.metrics.IncrementCounter(writeFailedMetric, map[string]string{logAttrEventType: event.EventType()})
	}
}

func (w *JournalWriter) append(ctx context.Context, event core.DomainEvent) error {
	storableEvent, err := StorableEventFrom(event, NewEventMetadata())
	if err != nil {
		return err
	}

	filter := eventstore.BuildEventFilter().
		ForTitles(event.HasTitle()).
		Finalize()

	return RetryWithExponentialBackoff(
		ctx,
		func(ctx context.Context) error {
			_, maxSequenceNumber, queryErr := w.store.Query(ctx, filter)
			if queryErr != nil {
				return queryErr
			}

			return w.store.Append(ctx, filter, maxSequenceNumber, storableEvent)
		},
		w.retryOptions...,
	)
}

package postgresengine

import (
	"context"
	"math"
	"time"

	"github.com/library-lending/lending-ledger/eventstore"
)

const (
	metricQueryDuration        = "journal_query_duration_seconds"
	metricAppendDuration       = "journal_append_duration_seconds"
	metricEventsQueried        = "journal_events_queried"
	metricEventsAppended       = "journal_events_appended"
	metricConcurrencyConflicts = "journal_concurrency_conflicts_total"
	metricDatabaseErrors       = "journal_database_errors_total"
	labelOperation             = "operation"
	labelStatus                = "status"
	labelErrorType             = "error_type"
	operationQuery             = "query"
	operationAppend            = "append"
	statusSuccess              = "success"
	statusError                = "error"
	errorTypeBuildQuery        = "build_query"
	errorTypeDatabase          = "database"
	errorTypeScan              = "scan"
	errorTypeRowsAffected      = "rows_affected"
)

func (es EventStore) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if es.logger != nil {
		es.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (es EventStore) logOperation(action string, args ...any) {
	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}
}

func (es EventStore) logError(message string, err error, args ...any) {
	if es.logger != nil {
		es.logger.Error(message, append([]any{logAttrError, err.Error()}, args...)...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func (es EventStore) recordDuration(ctx context.Context, metric string, duration time.Duration, operation, status string) {
	if es.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operation, labelStatus: status}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, labels)
}

func (es EventStore) recordValue(ctx context.Context, metric string, value float64, operation string) {
	if es.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operation, labelStatus: statusSuccess}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	es.metricsCollector.RecordValue(metric, value, labels)
}

func (es EventStore) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	es.metricsCollector.IncrementCounter(metric, labels)
}

func (es EventStore) recordError(ctx context.Context, operation, errorType string, duration time.Duration) {
	durationMetric := metricQueryDuration
	if operation == operationAppend {
		durationMetric = metricAppendDuration
	}

	es.recordDuration(ctx, durationMetric, duration, operation, statusError)
	es.incrementCounter(ctx, metricDatabaseErrors, map[string]string{
		labelOperation: operation,
		labelStatus:    statusError,
		labelErrorType: errorType,
	})
}

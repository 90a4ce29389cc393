package postgresengine

import (
	"github.com/openshelf/lending-engine-go/recordstore"
)

// Aliases for the dependency-free observability interfaces defined in the
// recordstore package, so that userland code configuring the engine only
// needs to import this package.
type (
	Logger                     = recordstore.Logger
	MetricsCollector           = recordstore.MetricsCollector
	ContextualMetricsCollector = recordstore.ContextualMetricsCollector
	TracingCollector           = recordstore.TracingCollector
	SpanContext                = recordstore.SpanContext
	ContextualLogger           = recordstore.ContextualLogger
)

// Option defines a functional option for configuring RecordStore.
type Option func(*RecordStore) error

// WithTableName sets the table name for the RecordStore.
func WithTableName(tableName string) Option {
	return func(rs *RecordStore) error {
		if tableName == "" {
			return recordstore.ErrEmptyRecordsTableName
		}

		rs.recordTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the RecordStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Record counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like rollback failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(rs *RecordStore) error {
		rs.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the RecordStore.
// The metrics collector will receive performance and operational metrics including
// query/commit durations, concurrency conflicts, and database errors.
func WithMetrics(collector MetricsCollector) Option {
	return func(rs *RecordStore) error {
		rs.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the RecordStore.
// The tracing collector will receive distributed tracing information including
// span creation for query/commit operations, context propagation, and error tracking.
func WithTracing(collector TracingCollector) Option {
	return func(rs *RecordStore) error {
		rs.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the RecordStore.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled, enabling unified observability.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(rs *RecordStore) error {
		rs.contextualLogger = logger
		return nil
	}
}

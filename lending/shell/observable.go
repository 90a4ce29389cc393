package shell

import (
	"context"
	"time"
)

// CarriesHandlerResult is satisfied by HandlerResult itself and by feature
// result types that embed it.
type CarriesHandlerResult interface {
	Metadata() HandlerResult
}

// CommandHandlerFunc is the handler signature wrapped by ObservableCommandHandler.
type CommandHandlerFunc[C Command, R CarriesHandlerResult] func(ctx context.Context, command C) (R, error)

// QueryHandlerFunc is the handler signature wrapped by ObservableQueryHandler.
type QueryHandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

type observabilityConfig struct {
	logger           Logger
	contextualLogger ContextualLogger
	metrics          MetricsCollector
	tracing          TracingCollector
}

// ObservabilityOption configures the observability wrappers.
type ObservabilityOption func(*observabilityConfig)

// WithLogger sets a basic logger.
func WithLogger(logger Logger) ObservabilityOption {
	return func(c *observabilityConfig) {
		c.logger = logger
	}
}

// WithContextualLogger sets a context-aware logger, preferred over the basic
// logger when both are configured.
func WithContextualLogger(logger ContextualLogger) ObservabilityOption {
	return func(c *observabilityConfig) {
		c.contextualLogger = logger
	}
}

// WithMetricsCollector sets a metrics collector.
func WithMetricsCollector(collector MetricsCollector) ObservabilityOption {
	return func(c *observabilityConfig) {
		c.metrics = collector
	}
}

// WithTracingCollector sets a tracing collector.
func WithTracingCollector(collector TracingCollector) ObservabilityOption {
	return func(c *observabilityConfig) {
		c.tracing = collector
	}
}

// ObservableCommandHandler decorates a command handler with logging, metrics
// and tracing. The wrapped handler stays free of observability concerns; the
// wrapper classifies the outcome (success, idempotent, rejected, canceled,
// timeout, concurrency conflict, error) and records it on every configured
// collector.
type ObservableCommandHandler[C Command, R CarriesHandlerResult] struct {
	handle CommandHandlerFunc[C, R]
	config observabilityConfig
}

// NewObservableCommandHandler wraps the given handler function.
func NewObservableCommandHandler[C Command, R CarriesHandlerResult](
	handle CommandHandlerFunc[C, R],
	opts ...ObservabilityOption,
) ObservableCommandHandler[C, R] {
	wrapper := ObservableCommandHandler[C, R]{handle: handle}

	for _, opt := range opts {
		opt(&wrapper.config)
	}

	return wrapper
}

// Handle executes the wrapped handler and records the classified outcome.
func (h ObservableCommandHandler[C, R]) Handle(ctx context.Context, command C) (R, error) {
	commandType := command.CommandType()
	start := time.Now()

	LogCommandStart(ctx, h.config.logger, h.config.contextualLogger, commandType)
	spanCtx, span := StartCommandSpan(ctx, h.config.tracing, commandType)

	result, err := h.handle(spanCtx, command)

	duration := time.Since(start)
	status := classifyCommandOutcome(result.Metadata(), err)

	RecordCommandMetrics(spanCtx, h.config.metrics, commandType, status, duration)
	FinishCommandSpan(h.config.tracing, span, status, duration, err)

	switch {
	case err == nil:
		LogCommandSuccess(spanCtx, h.config.logger, h.config.contextualLogger, commandType, status, duration)
	case status == StatusRejected:
		// A refused business rule is a valid outcome, not a failure
		LogCommandSuccess(spanCtx, h.config.logger, h.config.contextualLogger, commandType, status, duration)
	default:
		LogCommandError(spanCtx, h.config.logger, h.config.contextualLogger, commandType, err)
	}

	return result, err
}

// ObservableQueryHandler decorates a query handler with logging, metrics and
// tracing, classifying the outcome as success, canceled, timeout or error.
type ObservableQueryHandler[Q Query, R any] struct {
	handle QueryHandlerFunc[Q, R]
	config observabilityConfig
}

// NewObservableQueryHandler wraps the given handler function.
func NewObservableQueryHandler[Q Query, R any](
	handle QueryHandlerFunc[Q, R],
	opts ...ObservabilityOption,
) ObservableQueryHandler[Q, R] {
	wrapper := ObservableQueryHandler[Q, R]{handle: handle}

	for _, opt := range opts {
		opt(&wrapper.config)
	}

	return wrapper
}

// Handle executes the wrapped handler and records the classified outcome.
func (h ObservableQueryHandler[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	queryType := query.QueryType()
	start := time.Now()

	LogQueryStart(ctx, h.config.logger, h.config.contextualLogger, queryType)
	spanCtx, span := StartQuerySpan(ctx, h.config.tracing, queryType)

	result, err := h.handle(spanCtx, query)

	duration := time.Since(start)
	status := classifyQueryOutcome(err)

	RecordQueryMetrics(spanCtx, h.config.metrics, queryType, status, duration)
	FinishQuerySpan(h.config.tracing, span, status, duration, err)

	if err == nil {
		LogQuerySuccess(spanCtx, h.config.logger, h.config.contextualLogger, queryType, duration)
	} else {
		LogQueryError(spanCtx, h.config.logger, h.config.contextualLogger, queryType, err)
	}

	return result, err
}

func classifyCommandOutcome(metadata HandlerResult, err error) string {
	if err == nil {
		if metadata.Idempotent {
			return StatusIdempotent
		}

		return StatusSuccess
	}

	if _, isRejection := AsRejection(err); isRejection {
		return StatusRejected
	}

	switch {
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	default:
		return StatusError
	}
}

func classifyQueryOutcome(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	default:
		return StatusError
	}
}

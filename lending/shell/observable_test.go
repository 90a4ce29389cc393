package shell_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/recordstore"
)

type testCommand struct{}

func (testCommand) CommandType() string { return "TestCommand" }

type testQuery struct{}

func (testQuery) QueryType() string { return "TestQuery" }

type fakeMetrics struct {
	counters  map[string]int
	durations map[string]int
	labels    map[string]map[string]string
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		counters:  map[string]int{},
		durations: map[string]int{},
		labels:    map[string]map[string]string{},
	}
}

func (f *fakeMetrics) RecordDuration(metric string, _ time.Duration, labels map[string]string) {
	f.durations[metric]++
	f.labels[metric] = labels
}

func (f *fakeMetrics) IncrementCounter(metric string, labels map[string]string) {
	f.counters[metric]++
	f.labels[metric] = labels
}

func (f *fakeMetrics) RecordValue(string, float64, map[string]string) {}

type fakeSpan struct {
	status string
}

func (s *fakeSpan) SetStatus(status string)     { s.status = status }
func (s *fakeSpan) AddAttribute(string, string) {}

type fakeTracing struct {
	span         *fakeSpan
	finishStatus string
}

func (f *fakeTracing) StartSpan(ctx context.Context, _ string, _ map[string]string) (context.Context, shell.SpanContext) {
	f.span = &fakeSpan{}

	return ctx, f.span
}

func (f *fakeTracing) FinishSpan(_ shell.SpanContext, status string, _ map[string]string) {
	f.finishStatus = status
}

type fakeLogger struct {
	infoMsgs  []string
	errorMsgs []string
}

func (f *fakeLogger) Debug(string, ...any)       {}
func (f *fakeLogger) Info(msg string, _ ...any)  { f.infoMsgs = append(f.infoMsgs, msg) }
func (f *fakeLogger) Warn(string, ...any)        {}
func (f *fakeLogger) Error(msg string, _ ...any) { f.errorMsgs = append(f.errorMsgs, msg) }

func Test_ObservableCommandHandler_RecordsSuccess(t *testing.T) {
	// arrange
	metrics := newFakeMetrics()
	tracing := &fakeTracing{}
	logger := &fakeLogger{}

	handle := func(_ context.Context, _ testCommand) (shell.HandlerResult, error) {
		return shell.HandlerResult{RetryAttempts: 1}, nil
	}
	wrapped := shell.NewObservableCommandHandler(handle,
		shell.WithMetricsCollector(metrics),
		shell.WithTracingCollector(tracing),
		shell.WithLogger(logger),
	)

	// act
	_, err := wrapped.Handle(context.Background(), testCommand{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, metrics.counters[shell.CommandHandlerCallsMetric])
	assert.Equal(t, 1, metrics.durations[shell.CommandHandlerDurationMetric])
	assert.Equal(t, shell.StatusSuccess, metrics.labels[shell.CommandHandlerCallsMetric][shell.LogAttrStatus])
	assert.Equal(t, shell.StatusSuccess, tracing.finishStatus)
	assert.Equal(t, []string{shell.LogMsgCommandStarted, shell.LogMsgCommandCompleted}, logger.infoMsgs)
	assert.Empty(t, logger.errorMsgs)
}

func Test_ObservableCommandHandler_RecordsIdempotentOutcome(t *testing.T) {
	// arrange
	metrics := newFakeMetrics()

	handle := func(_ context.Context, _ testCommand) (shell.HandlerResult, error) {
		return shell.HandlerResult{Idempotent: true}, nil
	}
	wrapped := shell.NewObservableCommandHandler(handle, shell.WithMetricsCollector(metrics))

	// act
	_, err := wrapped.Handle(context.Background(), testCommand{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, metrics.counters[shell.CommandHandlerIdempotentMetric])
}

func Test_ObservableCommandHandler_RecordsRejectionAsBusinessOutcome(t *testing.T) {
	// arrange
	metrics := newFakeMetrics()
	logger := &fakeLogger{}

	handle := func(_ context.Context, _ testCommand) (shell.HandlerResult, error) {
		return shell.HandlerResult{}, shell.NewRejectionError(core.NotAvailable)
	}
	wrapped := shell.NewObservableCommandHandler(handle,
		shell.WithMetricsCollector(metrics),
		shell.WithLogger(logger),
	)

	// act
	_, err := wrapped.Handle(context.Background(), testCommand{})

	// assert
	assert.Error(t, err)
	assert.Equal(t, 1, metrics.counters[shell.CommandHandlerRejectedMetric])
	assert.Empty(t, logger.errorMsgs)
}

func Test_ObservableCommandHandler_RecordsConcurrencyConflict(t *testing.T) {
	// arrange
	metrics := newFakeMetrics()
	logger := &fakeLogger{}

	handle := func(_ context.Context, _ testCommand) (shell.HandlerResult, error) {
		return shell.HandlerResult{}, recordstore.ErrConcurrencyConflict
	}
	wrapped := shell.NewObservableCommandHandler(handle,
		shell.WithMetricsCollector(metrics),
		shell.WithLogger(logger),
	)

	// act
	_, err := wrapped.Handle(context.Background(), testCommand{})

	// assert
	assert.Error(t, err)
	assert.Equal(t, 1, metrics.counters[shell.CommandHandlerConcurrencyConflictMetric])
	assert.Equal(t, []string{shell.LogMsgCommandFailed}, logger.errorMsgs)
}

func Test_ObservableQueryHandler_RecordsSuccess(t *testing.T) {
	// arrange
	metrics := newFakeMetrics()
	logger := &fakeLogger{}

	handle := func(_ context.Context, _ testQuery) (int, error) {
		return 42, nil
	}
	wrapped := shell.NewObservableQueryHandler(handle,
		shell.WithMetricsCollector(metrics),
		shell.WithLogger(logger),
	)

	// act
	result, err := wrapped.Handle(context.Background(), testQuery{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, metrics.counters[shell.QueryHandlerCallsMetric])
	assert.Equal(t, []string{shell.LogMsgQueryStarted, shell.LogMsgQueryCompleted}, logger.infoMsgs)
}

func Test_ObservableQueryHandler_RecordsTimeout(t *testing.T) {
	// arrange
	metrics := newFakeMetrics()

	handle := func(_ context.Context, _ testQuery) (int, error) {
		return 0, context.DeadlineExceeded
	}
	wrapped := shell.NewObservableQueryHandler(handle, shell.WithMetricsCollector(metrics))

	// act
	_, err := wrapped.Handle(context.Background(), testQuery{})

	// assert
	assert.Error(t, err)
	assert.Equal(t, 1, metrics.counters[shell.QueryHandlerTimeoutMetric])
}

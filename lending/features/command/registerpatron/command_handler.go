package registerpatron

import (
	"context"
	"errors"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/recordstore"
)

// Catalog defines the interface needed by the CommandHandler for catalog operations.
type Catalog interface {
	FindPatron(ctx context.Context, patronID core.PatronIDString) (catalog.PatronSnapshot, error)
	PatronWrite(patron core.Patron, readAt recordstore.VersionUint) (recordstore.RecordWrite, error)
	Commit(ctx context.Context, write recordstore.RecordWrite, additionalWrites ...recordstore.RecordWrite) error
}

// CommandHandler orchestrates the complete command processing workflow with pure business logic and retry.
// It handles the state-based workflow: Read snapshot -> Decide -> Commit conditional insert.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	catalog      Catalog
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(cat Catalog, opts ...Option) CommandHandler {
	handler := CommandHandler{
		catalog: cat,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete command processing workflow with retry logic.
// Returns HandlerResult containing business outcomes and execution metadata for observability.
//
// Resilience: Implements exponential backoff retry logic for concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var isIdempotent bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		idempotent, execErr := h.executeCommand(retryCtx, command)
		isIdempotent = idempotent

		return execErr
	}, h.retryOptions...)

	if isIdempotent {
		return shell.NewIdempotentResult(retryMetrics), err
	}

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (bool, error) {
	ctx = recordstore.WithStrongConsistency(ctx)

	// Read phase
	alreadyRegistered := true
	if _, err := h.catalog.FindPatron(ctx, command.PatronID); err != nil {
		if !errors.Is(err, shell.ErrNotFound) {
			return false, err
		}

		alreadyRegistered = false
	}

	// Business logic phase - delegate to pure core function
	decision := Decide(alreadyRegistered, command)

	if decision.Result.IsIdempotent() {
		return true, nil
	}

	// Commit phase - conditional insert, a racing registration surfaces as a
	// concurrency conflict and resolves to idempotent on retry
	patronWrite, err := h.catalog.PatronWrite(decision.Patron, 0)
	if err != nil {
		return false, err
	}

	return false, h.catalog.Commit(ctx, patronWrite)
}

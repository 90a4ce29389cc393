package renewloan

import (
	"context"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/recordstore"
)

// Catalog defines the interface needed by the CommandHandler for catalog operations.
type Catalog interface {
	FindOpenLoan(ctx context.Context, patronID core.PatronIDString, copyNumber core.CopyNumberString) (catalog.LoanSnapshot, error)
	LoanWrite(loan core.BorrowRecord, readAt recordstore.VersionUint) (recordstore.RecordWrite, error)
	Commit(ctx context.Context, write recordstore.RecordWrite, additionalWrites ...recordstore.RecordWrite) error
}

// CommandHandler orchestrates the complete command processing workflow with pure business logic and retry.
// It handles the state-based workflow: Read snapshot -> Decide -> Commit conditional write.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	catalog      Catalog
	clock        shell.Clock
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

// WithClock sets a custom time source for the handler.
func WithClock(clock shell.Clock) Option {
	return func(h *CommandHandler) {
		h.clock = clock
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(cat Catalog, opts ...Option) CommandHandler {
	handler := CommandHandler{
		catalog: cat,
		clock:   shell.SystemClock{},
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
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	ctx = recordstore.WithStrongConsistency(ctx)

	// Read phase
	loanSnapshot, err := h.catalog.FindOpenLoan(ctx, command.PatronID, command.CopyNumber)
	if err != nil {
		return err
	}

	// Business logic phase - delegate to pure core function
	decision := Decide(loanSnapshot.Loan, h.clock.Now())

	if decision.Result.IsRejected() {
		return shell.NewRejectionError(decision.Result.RejectionReason())
	}

	// Commit phase - only the loan record changes
	loanWrite, err := h.catalog.LoanWrite(decision.Loan, loanSnapshot.Version)
	if err != nil {
		return err
	}

	return h.catalog.Commit(ctx, loanWrite)
}

package borrowcopy

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/recordstore"
)

// Catalog defines the interface needed by the CommandHandler for catalog operations.
type Catalog interface {
	FindBookByCopy(ctx context.Context, copyNumber core.CopyNumberString) (catalog.BookSnapshot, error)
	FindPatron(ctx context.Context, patronID core.PatronIDString) (catalog.PatronSnapshot, error)
	FindOpenLoan(ctx context.Context, patronID core.PatronIDString, copyNumber core.CopyNumberString) (catalog.LoanSnapshot, error)
	BookWrite(book core.Book, readAt recordstore.VersionUint) (recordstore.RecordWrite, error)
	PatronWrite(patron core.Patron, readAt recordstore.VersionUint) (recordstore.RecordWrite, error)
	LoanWrite(loan core.BorrowRecord, readAt recordstore.VersionUint) (recordstore.RecordWrite, error)
	Commit(ctx context.Context, write recordstore.RecordWrite, additionalWrites ...recordstore.RecordWrite) error
}

// CommandHandler orchestrates the complete command processing workflow with pure business logic and retry.
// It handles the state-based workflow: Read snapshots -> Decide -> Commit conditional writes.
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
// It delegates business logic to executeCommand and handles retry with exponential backoff.
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
	bookSnapshot, err := h.catalog.FindBookByCopy(ctx, command.CopyNumber)
	if err != nil {
		return false, err
	}

	patronSnapshot, err := h.catalog.FindPatron(ctx, command.PatronID)
	if err != nil {
		return false, err
	}

	hasOpenLoan := true
	if _, loanErr := h.catalog.FindOpenLoan(ctx, command.PatronID, command.CopyNumber); loanErr != nil {
		if !errors.Is(loanErr, shell.ErrNotFound) {
			return false, loanErr
		}
		hasOpenLoan = false
	}

	// Business logic phase - delegate to pure core function
	decision, err := Decide(
		bookSnapshot.Book,
		patronSnapshot.Patron,
		hasOpenLoan,
		command,
		uuid.New().String(),
		h.clock.Now(),
	)
	if err != nil {
		return false, err
	}

	if decision.Result.IsIdempotent() {
		return true, nil // Idempotent success - nothing to commit
	}

	if decision.Result.IsRejected() {
		return false, shell.NewRejectionError(decision.Result.RejectionReason())
	}

	// Commit phase - book, patron and new loan in one transaction
	bookWrite, err := h.catalog.BookWrite(decision.Book, bookSnapshot.Version)
	if err != nil {
		return false, err
	}

	patronWrite, err := h.catalog.PatronWrite(decision.Patron, patronSnapshot.Version)
	if err != nil {
		return false, err
	}

	loanWrite, err := h.catalog.LoanWrite(decision.Loan, 0)
	if err != nil {
		return false, err
	}

	return false, h.catalog.Commit(ctx, bookWrite, patronWrite, loanWrite)
}

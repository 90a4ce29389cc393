package returncopy

import (
	"context"

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

// Result extends the generic handler result with the business outcome of the
// return: whether it was on time and which fine was booked.
type Result struct {
	shell.HandlerResult

	// FineAmount is the fine booked onto the patron's ledger, zero for
	// on-time returns.
	FineAmount core.FineAmount

	// ReturnedOnTime distinguishes the on-time path from the overdue path.
	ReturnedOnTime bool
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
// Returns a Result carrying the fine outcome alongside the usual execution metadata.
//
// Resilience: Implements exponential backoff retry logic for concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var fine core.FineAmount
	var onTime bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		fine, onTime, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, err
	}

	return Result{
		HandlerResult:  shell.NewSuccessResult(retryMetrics),
		FineAmount:     fine,
		ReturnedOnTime: onTime,
	}, nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.FineAmount, bool, error) {
	ctx = recordstore.WithStrongConsistency(ctx)

	// Read phase
	bookSnapshot, err := h.catalog.FindBookByCopy(ctx, command.CopyNumber)
	if err != nil {
		return 0, false, err
	}

	patronSnapshot, err := h.catalog.FindPatron(ctx, command.PatronID)
	if err != nil {
		return 0, false, err
	}

	loanSnapshot, err := h.catalog.FindOpenLoan(ctx, command.PatronID, command.CopyNumber)
	if err != nil {
		return 0, false, err
	}

	// Business logic phase - delegate to pure core function
	decision, err := Decide(bookSnapshot.Book, patronSnapshot.Patron, loanSnapshot.Loan, h.clock.Now())
	if err != nil {
		return 0, false, err
	}

	// Commit phase - book, patron and closed loan in one transaction
	bookWrite, err := h.catalog.BookWrite(decision.Book, bookSnapshot.Version)
	if err != nil {
		return 0, false, err
	}

	patronWrite, err := h.catalog.PatronWrite(decision.Patron, patronSnapshot.Version)
	if err != nil {
		return 0, false, err
	}

	loanWrite, err := h.catalog.LoanWrite(decision.Loan, loanSnapshot.Version)
	if err != nil {
		return 0, false, err
	}

	commitErr := h.catalog.Commit(ctx, bookWrite, patronWrite, loanWrite)
	if commitErr != nil {
		return 0, false, commitErr
	}

	return decision.Loan.Fine, decision.Loan.Fine == 0, nil
}

package catalogbook

import (
	"context"
	"errors"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/recordstore"
)

// maxSequenceAdvanceAttempts bounds the sequence catch-up loop after the book
// record is already committed.
const maxSequenceAdvanceAttempts = 10

// Catalog defines the interface needed by the CommandHandler for catalog operations.
type Catalog interface {
	FindSequence(ctx context.Context) (catalog.SequenceSnapshot, error)
	BookWrite(book core.Book, readAt recordstore.VersionUint) (recordstore.RecordWrite, error)
	SequenceWrite(lastIssued int, readAt recordstore.VersionUint) (recordstore.RecordWrite, error)
	Commit(ctx context.Context, write recordstore.RecordWrite, additionalWrites ...recordstore.RecordWrite) error
}

// NumberAllocator defines the interface needed by the CommandHandler for
// issuing unique book numbers.
type NumberAllocator interface {
	NextBookNumber(ctx context.Context, lastKnown string) (core.BookIDString, catalog.SequenceSnapshot, error)
}

// Result extends the generic handler result with the identifiers assigned
// during cataloguing.
type Result struct {
	shell.HandlerResult

	BookID         core.BookIDString
	AccessionCodes []core.AccessionCodeString
}

// CommandHandler orchestrates the complete command processing workflow with pure business logic and retry.
// It handles the state-based workflow: Allocate -> Decide -> Commit book, then advance the sequence.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	catalog      Catalog
	allocator    NumberAllocator
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
func NewCommandHandler(cat Catalog, allocator NumberAllocator, opts ...Option) CommandHandler {
	handler := CommandHandler{
		catalog:   cat,
		allocator: allocator,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete command processing workflow with retry logic.
// Returns Result containing the assigned identifiers and execution metadata for observability.
//
// Resilience: Implements exponential backoff retry logic for concurrency conflicts.
// A conflict on the book insert means another cataloguer took the candidate
// number first; the retry re-runs allocation against the fresh sequence state.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var bookID core.BookIDString
	var accessionCodes []core.AccessionCodeString

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		assignedBookID, codes, execErr := h.executeCommand(retryCtx, command)
		bookID = assignedBookID
		accessionCodes = codes

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, err
	}

	return Result{
		HandlerResult:  shell.NewSuccessResult(retryMetrics),
		BookID:         bookID,
		AccessionCodes: accessionCodes,
	}, nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(
	ctx context.Context,
	command Command,
) (core.BookIDString, []core.AccessionCodeString, error) {
	ctx = recordstore.WithStrongConsistency(ctx)

	// Allocation phase
	bookNumber, sequence, err := h.allocator.NextBookNumber(ctx, command.LastKnownBookNumber)
	if err != nil {
		return "", nil, err
	}

	// Business logic phase - delegate to pure core function
	decision, err := Decide(command, bookNumber)
	if err != nil {
		return "", nil, err
	}

	// Commit phase - the book must be durable before the sequence advances,
	// so the two writes are committed separately and in this order
	bookWrite, err := h.catalog.BookWrite(decision.Book, 0)
	if err != nil {
		return "", nil, err
	}

	if commitErr := h.catalog.Commit(ctx, bookWrite); commitErr != nil {
		return "", nil, commitErr
	}

	if advanceErr := h.advanceSequence(ctx, sequence); advanceErr != nil {
		return "", nil, advanceErr
	}

	accessionCodes := make([]core.AccessionCodeString, 0, len(decision.Book.Copies))
	for _, bookCopy := range decision.Book.Copies {
		accessionCodes = append(accessionCodes, bookCopy.AccessionCode)
	}

	return decision.Book.BookID, accessionCodes, nil
}

// advanceSequence persists the advanced sequence value. The book record is
// already committed at this point, so a concurrency conflict must not bubble
// up into the outer retry loop where it would trigger a second allocation.
// Instead the sequence is re-read: a concurrent cataloguer that advanced it
// past our value has already done the work for us.
func (h CommandHandler) advanceSequence(ctx context.Context, sequence catalog.SequenceSnapshot) error {
	target := sequence.LastIssued

	for attempt := 0; attempt < maxSequenceAdvanceAttempts; attempt++ {
		sequenceWrite, err := h.catalog.SequenceWrite(sequence.LastIssued, sequence.Version)
		if err != nil {
			return err
		}

		commitErr := h.catalog.Commit(ctx, sequenceWrite)
		if commitErr == nil {
			return nil
		}
		if !errors.Is(commitErr, recordstore.ErrConcurrencyConflict) {
			return commitErr
		}

		current, findErr := h.catalog.FindSequence(ctx)
		if findErr != nil {
			return findErr
		}
		if current.LastIssued >= target {
			return nil
		}

		sequence = catalog.SequenceSnapshot{LastIssued: target, Version: current.Version}
	}

	return shell.ErrExhaustedRetries
}

package shell

import (
	"errors"
	"fmt"

	"github.com/openshelf/lending-engine-go/lending/core"
)

var (
	// ErrNotFound is returned when a referenced book, copy, patron or loan
	// does not exist in the store.
	ErrNotFound = errors.New("record not found")

	// ErrExhaustedRetries is returned when all retry attempts for an
	// optimistic concurrency conflict have been used up. Callers should map
	// it to their Conflict result.
	ErrExhaustedRetries = errors.New("exhausted retries for concurrency conflict")

	// ErrStaleSequence is returned when the identifier sequence advanced
	// between read and conditional write.
	ErrStaleSequence = errors.New("identifier sequence was advanced concurrently")
)

// RejectionError carries the business rule that refused a command.
// It is a first-class outcome of the lending state machine, distinct from
// infrastructure failures, and callers branch on the reason.
type RejectionError struct {
	Reason core.RejectionReason
}

// NewRejectionError creates a RejectionError for the given reason.
func NewRejectionError(reason core.RejectionReason) *RejectionError {
	return &RejectionError{Reason: reason}
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	return fmt.Sprintf("command rejected: %s", e.Reason)
}

// AsRejection unwraps err into a RejectionError if it is one.
func AsRejection(err error) (*RejectionError, bool) {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection, true
	}

	return nil, false
}

package reservebook

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

// Decision carries the outcome of the reservation decision together with the
// updated book to persist when the outcome is a success.
type Decision struct {
	Result core.DecisionResult
	Book   core.Book
}

// Decide implements the business logic for reserving a book.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book and a patron
//	WHEN: ReserveBook command is received
//	THEN: the book is marked reserved for the patron
//	REJECTED: "CopyAvailable" if a copy is still on the shelf - reserving
//	          is only for books that are fully lent out
//	REJECTED: "AlreadyReservedByOther" if another patron holds the reservation
//	IDEMPOTENCY: if this patron already holds the reservation, no state change
func Decide(book core.Book, command Command) Decision {
	if book.ReservedBy == command.PatronID {
		return Decision{Result: core.IdempotentResult()}
	}

	if book.AvailableCopies > 0 {
		return Decision{Result: core.RejectedResult(core.CopyAvailable)}
	}

	if book.IsReserved() {
		return Decision{Result: core.RejectedResult(core.AlreadyReservedByOther)}
	}

	return Decision{
		Result: core.SuccessResult(),
		Book:   book.WithReservation(command.PatronID),
	}
}

package borrowcopy

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

// Decision carries the outcome of the borrow decision together with the
// updated entities to persist when the outcome is a success.
type Decision struct {
	Result core.DecisionResult
	Book   core.Book
	Patron core.Patron
	Loan   core.BorrowRecord
}

// Decide implements the business logic to determine whether a copy should be
// lent to a patron. This is a pure function with no side effects - it takes a
// freshly read snapshot of book and patron state and returns the updated
// state that should be committed.
//
// Business Rules:
//
//	GIVEN: A copy of a book and a patron
//	WHEN: BorrowCopy command is received
//	THEN: copy becomes Borrowed, counters shift, an open loan is created
//	REJECTED: "NotAvailable" if the copy is off the shelf or parked for another patron's reservation
//	REJECTED: "NotVerified" if the patron has not completed verification
//	REJECTED: "BorrowLimitExceeded" if the patron already holds the maximum number of open loans
//	REJECTED: "FineLimitExceeded" if the patron's fines are above the borrowing threshold
//	IDEMPOTENCY: if the patron already has an open loan on this copy, no state change
//
// The rejection checks run in fixed priority order: availability, then
// verification, then borrow count, then fine total. Borrowing a reserved
// copy is only allowed for the reserving patron and clears the reservation.
func Decide(
	book core.Book,
	patron core.Patron,
	hasOpenLoan bool,
	command Command,
	borrowID core.BorrowIDString,
	now core.Timestamp,
) (Decision, error) {
	if hasOpenLoan {
		return Decision{Result: core.IdempotentResult()}, nil
	}

	copyToBorrow, err := book.FindCopy(command.CopyNumber)
	if err != nil {
		return Decision{}, err
	}

	if !book.CopyBorrowableBy(copyToBorrow, command.PatronID) {
		return Decision{Result: core.RejectedResult(core.NotAvailable)}, nil
	}

	if !patron.Verified {
		return Decision{Result: core.RejectedResult(core.NotVerified)}, nil
	}

	if patron.HasReachedBorrowLimit() {
		return Decision{Result: core.RejectedResult(core.BorrowLimitExceeded)}, nil
	}

	if patron.HasExceededFineThreshold() {
		return Decision{Result: core.RejectedResult(core.FineLimitExceeded)}, nil
	}

	updatedBook, err := book.WithCopyBorrowed(command.CopyNumber)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Result: core.SuccessResult(),
		Book:   updatedBook,
		Patron: patron.WithBorrowStarted(),
		Loan:   core.BuildBorrowRecord(borrowID, command.PatronID, book.BookID, command.CopyNumber, now),
	}, nil
}

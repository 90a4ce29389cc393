package returncopy

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

// Decision carries the outcome of the return decision together with the
// updated entities to persist when the outcome is a success.
type Decision struct {
	Result core.DecisionResult
	Book   core.Book
	Patron core.Patron
	Loan   core.BorrowRecord
}

// Decide implements the business logic for returning a borrowed copy.
// This is a pure function with no side effects - it takes a freshly read
// snapshot of book, patron and open loan state and returns the updated state
// that should be committed.
//
// Business Rules:
//
//	GIVEN: An open loan of a patron on a copy
//	WHEN: ReturnCopy command is received
//	THEN: the loan is closed with the tiered overdue fine, the copy goes
//	      back on the shelf (parked when the book is reserved), the book
//	      counters shift back and the fine lands on the patron's ledger
//
// There is no rejection path: whether the return is on time or overdue only
// changes the fine, never the acceptance of the return.
func Decide(
	book core.Book,
	patron core.Patron,
	loan core.BorrowRecord,
	now core.Timestamp,
) (Decision, error) {
	closedLoan := loan.Returned(now)

	updatedBook, err := book.WithCopyReturned(loan.CopyNumber)
	if err != nil {
		return Decision{}, err
	}

	updatedPatron, err := patron.WithBorrowEnded(closedLoan.Fine)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Result: core.SuccessResult(),
		Book:   updatedBook,
		Patron: updatedPatron,
		Loan:   closedLoan,
	}, nil
}

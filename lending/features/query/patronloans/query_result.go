package patronloans

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

// Loan is one borrow record in a patron's history.
type Loan struct {
	BorrowID   core.BorrowIDString
	BookID     core.BookIDString
	CopyNumber core.CopyNumberString
	BorrowDate core.Timestamp
	DueDate    core.Timestamp
	RenewCount int
	Fine       core.FineAmount
	IsReturned bool
	ReturnDate core.Timestamp
}

// PatronLoans is the query result: the patron's ledger counters together
// with their full borrow history, open loans first.
type PatronLoans struct {
	PatronID          core.PatronIDString
	Name              string
	ActiveBorrowCount int
	FineTotal         core.FineAmount
	Loans             []Loan
}

// OpenLoans returns only the loans that have not been returned yet.
func (p PatronLoans) OpenLoans() []Loan {
	open := make([]Loan, 0, len(p.Loans))
	for _, loan := range p.Loans {
		if !loan.IsReturned {
			open = append(open, loan)
		}
	}

	return open
}

package patronloans

import (
	"context"
	"sort"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/recordstore"
)

// Catalog defines the interface needed by the QueryHandler for catalog operations.
type Catalog interface {
	FindPatron(ctx context.Context, patronID core.PatronIDString) (catalog.PatronSnapshot, error)
	FindLoansByPatron(ctx context.Context, patronID core.PatronIDString) ([]catalog.LoanSnapshot, error)
}

// QueryHandler handles the query and returns the result.
// External wrappers handle all observability concerns.
type QueryHandler struct {
	catalog Catalog
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(cat Catalog) QueryHandler {
	return QueryHandler{catalog: cat}
}

// Handle loads the patron and their full borrow history, open loans first,
// both groups ordered by borrow date. Returns shell.ErrNotFound when the
// patron is not registered.
func (h QueryHandler) Handle(ctx context.Context, query Query) (PatronLoans, error) {
	ctx = recordstore.WithEventualConsistency(ctx)

	patronSnapshot, err := h.catalog.FindPatron(ctx, query.PatronID)
	if err != nil {
		return PatronLoans{}, err
	}

	loanSnapshots, err := h.catalog.FindLoansByPatron(ctx, query.PatronID)
	if err != nil {
		return PatronLoans{}, err
	}

	loans := make([]Loan, 0, len(loanSnapshots))
	for _, snapshot := range loanSnapshots {
		loans = append(loans, Loan{
			BorrowID:   snapshot.Loan.BorrowID,
			BookID:     snapshot.Loan.BookID,
			CopyNumber: snapshot.Loan.CopyNumber,
			BorrowDate: snapshot.Loan.BorrowDate,
			DueDate:    snapshot.Loan.DueDate,
			RenewCount: snapshot.Loan.RenewCount,
			Fine:       snapshot.Loan.Fine,
			IsReturned: snapshot.Loan.IsReturned,
			ReturnDate: snapshot.Loan.ReturnDate,
		})
	}

	sort.SliceStable(loans, func(i, j int) bool {
		if loans[i].IsReturned != loans[j].IsReturned {
			return !loans[i].IsReturned
		}

		return loans[i].BorrowDate.Before(loans[j].BorrowDate)
	})

	return PatronLoans{
		PatronID:          patronSnapshot.Patron.PatronID,
		Name:              patronSnapshot.Patron.Name,
		ActiveBorrowCount: patronSnapshot.Patron.ActiveBorrowCount,
		FineTotal:         patronSnapshot.Patron.FineTotal,
		Loans:             loans,
	}, nil
}

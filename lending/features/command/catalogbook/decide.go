package catalogbook

import (
	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
)

// Decision carries the outcome of the cataloguing decision together with the
// fully assembled book to persist.
type Decision struct {
	Result core.DecisionResult
	Book   core.Book
}

// Decide implements the business logic for cataloguing a book under an
// already allocated book number.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A freshly allocated, unused book number
//	WHEN: CatalogBook command is received
//	THEN: a book with CopyCount copies is assembled, every copy carrying a
//	      derived copy number and accession code, all copies on the shelf
func Decide(command Command, bookNumber core.BookIDString) (Decision, error) {
	copies := make([]core.Copy, 0, command.CopyCount)
	for copyIndex := 1; copyIndex <= command.CopyCount; copyIndex++ {
		copies = append(copies, core.Copy{
			CopyNumber: catalog.CopyNumberFor(bookNumber, copyIndex),
			AccessionCode: catalog.AccessionCode(
				command.DDCCode,
				command.Author,
				command.Title,
				command.Volume,
				command.Edition,
				copyIndex,
				bookNumber,
			),
			Status: core.StatusAvailable,
		})
	}

	book, err := core.BuildBook(
		bookNumber,
		command.Title,
		command.Author,
		command.DDCCode,
		command.Volume,
		command.Edition,
		copies,
	)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Result: core.SuccessResult(),
		Book:   book,
	}, nil
}

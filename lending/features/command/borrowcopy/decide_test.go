package borrowcopy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/features/command/borrowcopy"
)

func givenBook(t *testing.T) core.Book {
	t.Helper()

	book, err := core.BuildBook("000042", "Title", "Author", "005.1", 1, 1, []core.Copy{
		{CopyNumber: "000042-1"},
		{CopyNumber: "000042-2"},
	})
	assert.NoError(t, err)

	return book
}

func givenVerifiedPatron(_ *testing.T) core.Patron {
	return core.BuildPatron("patron-1", "Ada", true)
}

func givenNow(_ *testing.T) core.Timestamp {
	return core.ToTimestamp(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))
}

func Test_Decide_Success_WhenAllPreconditionsMet(t *testing.T) {
	// arrange
	book := givenBook(t)
	patron := givenVerifiedPatron(t)
	now := givenNow(t)
	command := borrowcopy.BuildCommand(patron.PatronID, "000042-1")

	// act
	decision, err := borrowcopy.Decide(book, patron, false, command, "b-1", now)

	// assert
	assert.NoError(t, err)
	assert.True(t, decision.Result.HasStateChange())

	assert.Equal(t, 1, decision.Book.AvailableCopies)
	assert.Equal(t, 1, decision.Book.BorrowedCopies)
	borrowed, findErr := decision.Book.FindCopy("000042-1")
	assert.NoError(t, findErr)
	assert.Equal(t, core.StatusBorrowed, borrowed.Status)

	assert.Equal(t, 1, decision.Patron.ActiveBorrowCount)

	assert.Equal(t, "b-1", decision.Loan.BorrowID)
	assert.Equal(t, now, decision.Loan.BorrowDate)
	assert.Equal(t, now.Add(20*24*time.Hour), decision.Loan.DueDate)
	assert.False(t, decision.Loan.IsReturned)
}

func Test_Decide_Idempotent_WhenPatronAlreadyHoldsOpenLoanOnCopy(t *testing.T) {
	// arrange
	book := givenBook(t)
	patron := givenVerifiedPatron(t)
	command := borrowcopy.BuildCommand(patron.PatronID, "000042-1")

	// act
	decision, err := borrowcopy.Decide(book, patron, true, command, "b-1", givenNow(t))

	// assert
	assert.NoError(t, err)
	assert.True(t, decision.Result.IsIdempotent())
}

func Test_Decide_Rejections_InPriorityOrder(t *testing.T) {
	now := givenNow(t)

	borrowedBook := givenBook(t)
	borrowedBook, err := borrowedBook.WithCopyBorrowed("000042-1")
	assert.NoError(t, err)

	reservedBook := givenBook(t)
	reservedBook.Copies[0].Status = core.StatusReserved
	reservedBook = reservedBook.WithReservation("patron-9")

	testCases := []struct {
		name           string
		book           core.Book
		patron         core.Patron
		expectedReason core.RejectionReason
	}{
		{
			name:           "copy already borrowed",
			book:           borrowedBook,
			patron:         givenVerifiedPatron(t),
			expectedReason: core.NotAvailable,
		},
		{
			name:           "copy reserved for another patron",
			book:           reservedBook,
			patron:         givenVerifiedPatron(t),
			expectedReason: core.NotAvailable,
		},
		{
			name:           "patron not verified",
			book:           givenBook(t),
			patron:         core.BuildPatron("patron-1", "Ada", false),
			expectedReason: core.NotVerified,
		},
		{
			name: "patron at borrow limit",
			book: givenBook(t),
			patron: core.Patron{
				PatronID:          "patron-1",
				Verified:          true,
				ActiveBorrowCount: core.MaxActiveBorrows,
			},
			expectedReason: core.BorrowLimitExceeded,
		},
		{
			name: "patron over fine threshold",
			book: givenBook(t),
			patron: core.Patron{
				PatronID:  "patron-1",
				Verified:  true,
				FineTotal: core.FineThreshold + 1,
			},
			expectedReason: core.FineLimitExceeded,
		},
		{
			name: "availability outranks verification",
			book: borrowedBook,
			patron: core.Patron{
				PatronID:  "patron-1",
				Verified:  false,
				FineTotal: core.FineThreshold + 1,
			},
			expectedReason: core.NotAvailable,
		},
		{
			name: "verification outranks borrow count and fines",
			book: givenBook(t),
			patron: core.Patron{
				PatronID:          "patron-1",
				Verified:          false,
				ActiveBorrowCount: core.MaxActiveBorrows,
				FineTotal:         core.FineThreshold + 1,
			},
			expectedReason: core.NotVerified,
		},
		{
			name: "borrow count outranks fines",
			book: givenBook(t),
			patron: core.Patron{
				PatronID:          "patron-1",
				Verified:          true,
				ActiveBorrowCount: core.MaxActiveBorrows,
				FineTotal:         core.FineThreshold + 1,
			},
			expectedReason: core.BorrowLimitExceeded,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			command := borrowcopy.BuildCommand(tc.patron.PatronID, "000042-1")

			// act
			decision, decideErr := borrowcopy.Decide(tc.book, tc.patron, false, command, "b-1", now)

			// assert
			assert.NoError(t, decideErr)
			assert.True(t, decision.Result.IsRejected())
			assert.Equal(t, tc.expectedReason, decision.Result.RejectionReason())
		})
	}
}

func Test_Decide_Success_ReservingPatronMayBorrowReservedCopy(t *testing.T) {
	// arrange
	book := givenBook(t)
	book.Copies[0].Status = core.StatusReserved
	book = book.WithReservation("patron-1")
	patron := givenVerifiedPatron(t)
	command := borrowcopy.BuildCommand(patron.PatronID, "000042-1")

	// act
	decision, err := borrowcopy.Decide(book, patron, false, command, "b-1", givenNow(t))

	// assert
	assert.NoError(t, err)
	assert.True(t, decision.Result.HasStateChange())
	assert.False(t, decision.Book.IsReserved(), "collecting the reserved copy clears the reservation")
}

func Test_Decide_FailsForUnknownCopy(t *testing.T) {
	// arrange
	book := givenBook(t)
	patron := givenVerifiedPatron(t)
	command := borrowcopy.BuildCommand(patron.PatronID, "000042-9")

	// act
	_, err := borrowcopy.Decide(book, patron, false, command, "b-1", givenNow(t))

	// assert
	assert.ErrorIs(t, err, core.ErrCopyNotFound)
}

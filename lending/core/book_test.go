package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/core"
)

func givenBookWithTwoCopies(t *testing.T) core.Book {
	t.Helper()

	book, err := core.BuildBook(
		"000042",
		"The Go Programming Language",
		"Donovan",
		"005.133",
		1,
		1,
		[]core.Copy{
			{CopyNumber: "000042-1", AccessionCode: "005.133.DON.B.1.000042"},
			{CopyNumber: "000042-2", AccessionCode: "005.133.DON.B.1;2.000042"},
		},
	)
	assert.NoError(t, err)

	return book
}

func Test_BuildBook_StartsWithAllCopiesOnShelf(t *testing.T) {
	// act
	book := givenBookWithTwoCopies(t)

	// assert
	assert.Equal(t, 2, book.AvailableCopies)
	assert.Equal(t, 0, book.BorrowedCopies)
	assert.NoError(t, book.CheckCounters())
}

func Test_BuildBook_RejectsEmptyAndDuplicateCopies(t *testing.T) {
	// act
	_, err := core.BuildBook("000042", "t", "a", "005", 1, 1, nil)

	// assert
	assert.ErrorIs(t, err, core.ErrBookWithoutCopies)

	// act
	_, err = core.BuildBook("000042", "t", "a", "005", 1, 1, []core.Copy{
		{CopyNumber: "000042-1"},
		{CopyNumber: "000042-1"},
	})

	// assert
	assert.ErrorIs(t, err, core.ErrDuplicateCopy)
}

func Test_Book_WithCopyBorrowed_MovesCopyOffShelf(t *testing.T) {
	// arrange
	book := givenBookWithTwoCopies(t)

	// act
	updated, err := book.WithCopyBorrowed("000042-1")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, updated.AvailableCopies)
	assert.Equal(t, 1, updated.BorrowedCopies)
	assert.NoError(t, updated.CheckCounters())

	borrowed, err := updated.FindCopy("000042-1")
	assert.NoError(t, err)
	assert.Equal(t, core.StatusBorrowed, borrowed.Status)

	// the snapshot the decision was made against stays untouched
	assert.Equal(t, 2, book.AvailableCopies)
	original, err := book.FindCopy("000042-1")
	assert.NoError(t, err)
	assert.Equal(t, core.StatusAvailable, original.Status)
}

func Test_Book_WithCopyBorrowed_FailsForBorrowedCopy(t *testing.T) {
	// arrange
	book := givenBookWithTwoCopies(t)
	book, err := book.WithCopyBorrowed("000042-1")
	assert.NoError(t, err)

	// act
	_, err = book.WithCopyBorrowed("000042-1")

	// assert
	assert.ErrorIs(t, err, core.ErrCopyNotOnShelf)
}

func Test_Book_WithCopyBorrowed_ClearsReservationWhenReservedCopyIsCollected(t *testing.T) {
	// arrange
	book := givenBookWithTwoCopies(t)
	book.Copies[0].Status = core.StatusReserved
	book = book.WithReservation("patron-7")

	// act
	updated, err := book.WithCopyBorrowed("000042-1")

	// assert
	assert.NoError(t, err)
	assert.False(t, updated.IsReserved())
	assert.NoError(t, updated.CheckCounters())
}

func Test_Book_WithCopyReturned_ParksCopyForReservingPatron(t *testing.T) {
	// arrange
	book := givenBookWithTwoCopies(t)
	book, err := book.WithCopyBorrowed("000042-1")
	assert.NoError(t, err)
	book, err = book.WithCopyBorrowed("000042-2")
	assert.NoError(t, err)
	book = book.WithReservation("patron-7")

	// act
	updated, err := book.WithCopyReturned("000042-1")

	// assert
	assert.NoError(t, err)
	returned, findErr := updated.FindCopy("000042-1")
	assert.NoError(t, findErr)
	assert.Equal(t, core.StatusReserved, returned.Status)
	assert.Equal(t, 1, updated.AvailableCopies)
	assert.Equal(t, 1, updated.BorrowedCopies)
	assert.NoError(t, updated.CheckCounters())
}

func Test_Book_WithCopyReturned_FailsForCopyOnShelf(t *testing.T) {
	// arrange
	book := givenBookWithTwoCopies(t)

	// act
	_, err := book.WithCopyReturned("000042-1")

	// assert
	assert.ErrorIs(t, err, core.ErrCopyNotBorrowed)
}

func Test_Book_CopyBorrowableBy(t *testing.T) {
	book := givenBookWithTwoCopies(t)
	book.Copies[0].Status = core.StatusReserved
	book = book.WithReservation("patron-7")

	reserved, err := book.FindCopy("000042-1")
	assert.NoError(t, err)
	open, err := book.FindCopy("000042-2")
	assert.NoError(t, err)

	assert.True(t, book.CopyBorrowableBy(reserved, "patron-7"))
	assert.False(t, book.CopyBorrowableBy(reserved, "patron-9"))
	assert.True(t, book.CopyBorrowableBy(open, "patron-9"))
}

func Test_Book_CheckCounters_DetectsDrift(t *testing.T) {
	// arrange
	book := givenBookWithTwoCopies(t)
	book.AvailableCopies = 1

	// act
	err := book.CheckCounters()

	// assert
	assert.ErrorIs(t, err, core.ErrCounterDrift)
}

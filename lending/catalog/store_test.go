package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/recordstore"
	"github.com/openshelf/lending-engine-go/testutil"
)

func givenStore(_ *testing.T) *catalog.Store {
	return catalog.NewStore(testutil.NewInMemoryRecordStore())
}

func Test_Store_BookRoundTrip(t *testing.T) {
	// arrange
	store := givenStore(t)
	book, err := core.BuildBook("000042", "Title", "Author", "005.1", 1, 2, []core.Copy{
		{CopyNumber: "000042-1", AccessionCode: "005.1.AUT.T.1:2.000042"},
		{CopyNumber: "000042-2", AccessionCode: "005.1.AUT.T.1:2;2.000042"},
	})
	assert.NoError(t, err)

	write, err := store.BookWrite(book, 0)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), write))

	// act
	snapshot, err := store.FindBook(context.Background(), "000042")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, book, snapshot.Book)
	assert.Equal(t, recordstore.VersionUint(1), snapshot.Version)
}

func Test_Store_FindBook_NotFound(t *testing.T) {
	// arrange
	store := givenStore(t)

	// act
	_, err := store.FindBook(context.Background(), "999999")

	// assert
	assert.ErrorIs(t, err, shell.ErrNotFound)
}

func Test_Store_FindBookByCopy(t *testing.T) {
	// arrange
	store := givenStore(t)
	book, err := core.BuildBook("000042", "Title", "Author", "005.1", 1, 1, []core.Copy{
		{CopyNumber: "000042-1"},
	})
	assert.NoError(t, err)

	write, err := store.BookWrite(book, 0)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), write))

	// act
	snapshot, err := store.FindBookByCopy(context.Background(), "000042-1")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "000042", snapshot.Book.BookID)

	// act: book exists but copy does not
	_, err = store.FindBookByCopy(context.Background(), "000042-7")

	// assert
	assert.ErrorIs(t, err, shell.ErrNotFound)

	// act: no book number prefix at all
	_, err = store.FindBookByCopy(context.Background(), "bogus")

	// assert
	assert.ErrorIs(t, err, catalog.ErrMalformedCopyNumber)
}

func Test_Store_StaleWriteFailsWithConcurrencyConflict(t *testing.T) {
	// arrange
	store := givenStore(t)
	patron := core.BuildPatron("patron-1", "Ada", true)

	write, err := store.PatronWrite(patron, 0)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), write))

	snapshot, err := store.FindPatron(context.Background(), "patron-1")
	assert.NoError(t, err)

	// a competing writer bumps the version
	competing, err := store.PatronWrite(snapshot.Patron.WithBorrowStarted(), snapshot.Version)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), competing))

	// act: write against the stale snapshot version
	stale, err := store.PatronWrite(snapshot.Patron.WithBorrowStarted(), snapshot.Version)
	assert.NoError(t, err)
	err = store.Commit(context.Background(), stale)

	// assert
	assert.ErrorIs(t, err, recordstore.ErrConcurrencyConflict)
}

func Test_Store_FindOpenLoan(t *testing.T) {
	// arrange
	store := givenStore(t)
	borrowedAt := core.ToTimestamp(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))

	closed := core.BuildBorrowRecord("b-1", "patron-1", "000042", "000042-1", borrowedAt)
	closed = closed.Returned(borrowedAt.Add(24 * time.Hour))
	open := core.BuildBorrowRecord("b-2", "patron-1", "000042", "000042-1", borrowedAt.Add(48*time.Hour))

	for _, loan := range []core.BorrowRecord{closed, open} {
		write, err := store.LoanWrite(loan, 0)
		assert.NoError(t, err)
		assert.NoError(t, store.Commit(context.Background(), write))
	}

	// act
	snapshot, err := store.FindOpenLoan(context.Background(), "patron-1", "000042-1")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "b-2", snapshot.Loan.BorrowID)
	assert.False(t, snapshot.Loan.IsReturned)

	// act: other patron has no open loan on this copy
	_, err = store.FindOpenLoan(context.Background(), "patron-2", "000042-1")

	// assert
	assert.ErrorIs(t, err, shell.ErrNotFound)
}

func Test_Store_FindLoansByPatron(t *testing.T) {
	// arrange
	store := givenStore(t)
	borrowedAt := core.ToTimestamp(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))

	mine := core.BuildBorrowRecord("b-1", "patron-1", "000042", "000042-1", borrowedAt)
	alsoMine := core.BuildBorrowRecord("b-2", "patron-1", "000043", "000043-1", borrowedAt)
	other := core.BuildBorrowRecord("b-3", "patron-2", "000042", "000042-2", borrowedAt)

	for _, loan := range []core.BorrowRecord{mine, alsoMine, other} {
		write, err := store.LoanWrite(loan, 0)
		assert.NoError(t, err)
		assert.NoError(t, store.Commit(context.Background(), write))
	}

	// act
	snapshots, err := store.FindLoansByPatron(context.Background(), "patron-1")

	// assert
	assert.NoError(t, err)
	assert.Len(t, snapshots, 2)
	assert.Equal(t, "b-1", snapshots[0].Loan.BorrowID)
	assert.Equal(t, "b-2", snapshots[1].Loan.BorrowID)
}

func Test_Store_MultiRecordCommitIsAtomic(t *testing.T) {
	// arrange
	records := testutil.NewInMemoryRecordStore()
	store := catalog.NewStore(records)

	patron := core.BuildPatron("patron-1", "Ada", true)
	patronWrite, err := store.PatronWrite(patron, 0)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), patronWrite))

	book, err := core.BuildBook("000042", "Title", "Author", "005.1", 1, 1, []core.Copy{
		{CopyNumber: "000042-1"},
	})
	assert.NoError(t, err)
	bookWrite, err := store.BookWrite(book, 0)
	assert.NoError(t, err)

	// act: insert of the book paired with a stale patron write
	stalePatronWrite, err := store.PatronWrite(patron, 7)
	assert.NoError(t, err)
	err = store.Commit(context.Background(), bookWrite, stalePatronWrite)

	// assert: nothing was applied
	assert.ErrorIs(t, err, recordstore.ErrConcurrencyConflict)
	_, err = store.FindBook(context.Background(), "000042")
	assert.ErrorIs(t, err, shell.ErrNotFound)
}

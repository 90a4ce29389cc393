package patronloans_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/features/command/borrowcopy"
	"github.com/openshelf/lending-engine-go/lending/features/command/returncopy"
	"github.com/openshelf/lending-engine-go/lending/features/query/patronloans"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/testutil"
)

type fixture struct {
	store *catalog.Store
	clock shell.FixedClock
}

func givenPatronWithHistory(t *testing.T) fixture {
	t.Helper()

	records := testutil.NewInMemoryRecordStore()
	store := catalog.NewStore(records)
	clock := shell.FixedClock{Instant: core.ToTimestamp(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))}

	book, err := core.BuildBook("000042", "Title", "Author", "005.1", 1, 1, []core.Copy{
		{CopyNumber: "000042-1"},
		{CopyNumber: "000042-2"},
	})
	assert.NoError(t, err)
	bookWrite, err := store.BookWrite(book, 0)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), bookWrite))

	patronWrite, err := store.PatronWrite(core.BuildPatron("patron-1", "Ada", true), 0)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), patronWrite))

	borrowHandler := borrowcopy.NewCommandHandler(store, borrowcopy.WithClock(clock))
	returnHandler := returncopy.NewCommandHandler(store, returncopy.WithClock(clock))

	// one closed loan on copy 1, one open loan on copy 2
	_, err = borrowHandler.Handle(context.Background(), borrowcopy.BuildCommand("patron-1", "000042-1"))
	assert.NoError(t, err)
	_, err = returnHandler.Handle(context.Background(), returncopy.BuildCommand("patron-1", "000042-1"))
	assert.NoError(t, err)
	_, err = borrowHandler.Handle(context.Background(), borrowcopy.BuildCommand("patron-1", "000042-2"))
	assert.NoError(t, err)

	return fixture{store: store, clock: clock}
}

func Test_QueryHandler_Handle_ListsHistoryWithOpenLoansFirst(t *testing.T) {
	// arrange
	f := givenPatronWithHistory(t)
	handler := patronloans.NewQueryHandler(f.store)

	// act
	result, err := handler.Handle(context.Background(), patronloans.BuildQuery("patron-1"))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "patron-1", result.PatronID)
	assert.Equal(t, "Ada", result.Name)
	assert.Equal(t, 1, result.ActiveBorrowCount)
	assert.Equal(t, 0, result.FineTotal)

	assert.Len(t, result.Loans, 2)
	assert.False(t, result.Loans[0].IsReturned)
	assert.Equal(t, "000042-2", result.Loans[0].CopyNumber)
	assert.True(t, result.Loans[1].IsReturned)
	assert.Equal(t, "000042-1", result.Loans[1].CopyNumber)

	open := result.OpenLoans()
	assert.Len(t, open, 1)
	assert.Equal(t, "000042-2", open[0].CopyNumber)
	assert.Equal(t, f.clock.Instant.Add(core.LoanPeriodDays*24*time.Hour), open[0].DueDate)
}

func Test_QueryHandler_Handle_EmptyHistoryForFreshPatron(t *testing.T) {
	// arrange
	records := testutil.NewInMemoryRecordStore()
	store := catalog.NewStore(records)
	patronWrite, err := store.PatronWrite(core.BuildPatron("patron-1", "Ada", true), 0)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), patronWrite))

	handler := patronloans.NewQueryHandler(store)

	// act
	result, err := handler.Handle(context.Background(), patronloans.BuildQuery("patron-1"))

	// assert
	assert.NoError(t, err)
	assert.Empty(t, result.Loans)
	assert.Equal(t, 0, result.ActiveBorrowCount)
}

func Test_QueryHandler_Handle_NotFound_ForUnknownPatron(t *testing.T) {
	// arrange
	handler := patronloans.NewQueryHandler(catalog.NewStore(testutil.NewInMemoryRecordStore()))

	// act
	_, err := handler.Handle(context.Background(), patronloans.BuildQuery("patron-9"))

	// assert
	assert.ErrorIs(t, err, shell.ErrNotFound)
}

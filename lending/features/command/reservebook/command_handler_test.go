package reservebook_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/features/command/reservebook"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/testutil"
)

type fixture struct {
	records *testutil.InMemoryRecordStore
	store   *catalog.Store
}

func givenFullyLentBookInStore(t *testing.T) fixture {
	t.Helper()

	records := testutil.NewInMemoryRecordStore()
	store := catalog.NewStore(records)

	book, err := core.BuildBook("000042", "Title", "Author", "005.1", 1, 1, []core.Copy{
		{CopyNumber: "000042-1"},
	})
	assert.NoError(t, err)
	book, err = book.WithCopyBorrowed("000042-1")
	assert.NoError(t, err)

	bookWrite, err := store.BookWrite(book, 0)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), bookWrite))

	patronWrite, err := store.PatronWrite(core.BuildPatron("patron-1", "Ada", true), 0)
	assert.NoError(t, err)
	assert.NoError(t, store.Commit(context.Background(), patronWrite))

	return fixture{records: records, store: store}
}

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	f := givenFullyLentBookInStore(t)
	handler := reservebook.NewCommandHandler(f.store)

	// act
	result, err := handler.Handle(context.Background(), reservebook.BuildCommand("patron-1", "000042"))

	// assert
	assert.NoError(t, err)
	assert.False(t, result.Idempotent)

	bookSnapshot, err := f.store.FindBook(context.Background(), "000042")
	assert.NoError(t, err)
	assert.Equal(t, "patron-1", bookSnapshot.Book.ReservedBy)
}

func Test_CommandHandler_Handle_Idempotent_OnRepeatReservation(t *testing.T) {
	// arrange
	f := givenFullyLentBookInStore(t)
	handler := reservebook.NewCommandHandler(f.store)
	command := reservebook.BuildCommand("patron-1", "000042")

	_, err := handler.Handle(context.Background(), command)
	assert.NoError(t, err)

	// act
	result, err := handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err)
	assert.True(t, result.Idempotent)
}

func Test_CommandHandler_Handle_Rejected_ForSecondPatron(t *testing.T) {
	// arrange
	f := givenFullyLentBookInStore(t)
	patronWrite, err := f.store.PatronWrite(core.BuildPatron("patron-2", "Bob", true), 0)
	assert.NoError(t, err)
	assert.NoError(t, f.store.Commit(context.Background(), patronWrite))

	handler := reservebook.NewCommandHandler(f.store)
	_, err = handler.Handle(context.Background(), reservebook.BuildCommand("patron-1", "000042"))
	assert.NoError(t, err)

	// act
	_, err = handler.Handle(context.Background(), reservebook.BuildCommand("patron-2", "000042"))

	// assert
	rejection, ok := shell.AsRejection(err)
	assert.True(t, ok)
	assert.Equal(t, core.AlreadyReservedByOther, rejection.Reason)
}

func Test_CommandHandler_Handle_NotFound_ForUnknownBook(t *testing.T) {
	// arrange
	f := givenFullyLentBookInStore(t)
	handler := reservebook.NewCommandHandler(f.store)

	// act
	_, err := handler.Handle(context.Background(), reservebook.BuildCommand("patron-1", "999999"))

	// assert
	assert.ErrorIs(t, err, shell.ErrNotFound)
}

func Test_CommandHandler_Handle_RetriesOnConcurrencyConflict(t *testing.T) {
	// arrange
	f := givenFullyLentBookInStore(t)
	f.records.FailNextCommits(1)
	handler := reservebook.NewCommandHandler(f.store, reservebook.WithRetryOptions(
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
	))

	// act
	result, err := handler.Handle(context.Background(), reservebook.BuildCommand("patron-1", "000042"))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, result.RetryAttempts)
}

package catalogbook_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/features/command/catalogbook"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/testutil"
)

type fixture struct {
	records *testutil.InMemoryRecordStore
	store   *catalog.Store
	handler catalogbook.CommandHandler
}

func givenHandler(t *testing.T, opts ...catalogbook.Option) fixture {
	t.Helper()

	records := testutil.NewInMemoryRecordStore()
	store := catalog.NewStore(records)
	handler := catalogbook.NewCommandHandler(store, catalog.NewAllocator(store), opts...)

	return fixture{records: records, store: store, handler: handler}
}

func Test_CommandHandler_Handle_AssignsFirstBookNumberAndPersistsBookAndSequence(t *testing.T) {
	// arrange
	f := givenHandler(t)
	command := catalogbook.BuildCommand("The Go Programming Language", "Donovan", "005.133", 1, 1, 2)

	// act
	result, err := f.handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "000001", result.BookID)
	assert.Len(t, result.AccessionCodes, 2)
	assert.Equal(t, "005.133.DON.T.1.000001", result.AccessionCodes[0])

	bookSnapshot, err := f.store.FindBook(context.Background(), "000001")
	assert.NoError(t, err)
	assert.Equal(t, 2, bookSnapshot.Book.AvailableCopies)

	sequence, err := f.store.FindSequence(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, sequence.LastIssued)
}

func Test_CommandHandler_Handle_IssuesMonotonicallyIncreasingNumbers(t *testing.T) {
	// arrange
	f := givenHandler(t)
	command := catalogbook.BuildCommand("Title", "Author", "005.1", 1, 1, 1)

	// act
	first, firstErr := f.handler.Handle(context.Background(), command)
	second, secondErr := f.handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, firstErr)
	assert.NoError(t, secondErr)
	assert.Equal(t, "000001", first.BookID)
	assert.Equal(t, "000002", second.BookID)
}

func Test_CommandHandler_Handle_RejectsStaleLastKnownBookNumber(t *testing.T) {
	// arrange
	f := givenHandler(t)
	command := catalogbook.BuildCommand("Title", "Author", "005.1", 1, 1, 1)

	_, err := f.handler.Handle(context.Background(), command)
	assert.NoError(t, err)

	// act
	_, err = f.handler.Handle(context.Background(), command.WithLastKnownBookNumber("000005"))

	// assert
	assert.ErrorIs(t, err, shell.ErrStaleSequence)
}

func Test_CommandHandler_Handle_AcceptsMatchingLastKnownBookNumber(t *testing.T) {
	// arrange
	f := givenHandler(t)
	command := catalogbook.BuildCommand("Title", "Author", "005.1", 1, 1, 1)

	_, err := f.handler.Handle(context.Background(), command)
	assert.NoError(t, err)

	// act
	result, err := f.handler.Handle(context.Background(), command.WithLastKnownBookNumber("000001"))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "000002", result.BookID)
}

func Test_CommandHandler_Handle_RetriesWhenBookInsertConflicts(t *testing.T) {
	// arrange
	f := givenHandler(t, catalogbook.WithRetryOptions(
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
	))
	f.records.FailNextCommits(1)
	command := catalogbook.BuildCommand("Title", "Author", "005.1", 1, 1, 1)

	// act
	result, err := f.handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "000001", result.BookID)
	assert.Equal(t, 2, result.RetryAttempts)
}

func Test_CommandHandler_Handle_SkipsNumbersAlreadyInCatalog(t *testing.T) {
	// arrange
	f := givenHandler(t)
	command := catalogbook.BuildCommand("Title", "Author", "005.1", 1, 1, 1)

	_, err := f.handler.Handle(context.Background(), command)
	assert.NoError(t, err)

	// simulate a lagging sequence by resetting it below the catalogued number
	sequence, err := f.store.FindSequence(context.Background())
	assert.NoError(t, err)
	sequenceWrite, err := f.store.SequenceWrite(0, sequence.Version)
	assert.NoError(t, err)
	assert.NoError(t, f.store.Commit(context.Background(), sequenceWrite))

	// act
	result, err := f.handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "000002", result.BookID)
}

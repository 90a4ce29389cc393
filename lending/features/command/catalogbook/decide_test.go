package catalogbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/features/command/catalogbook"
)

func Test_Decide_Success_AssemblesBookWithAllCopiesOnShelf(t *testing.T) {
	// arrange
	command := catalogbook.BuildCommand("The Go Programming Language", "Donovan", "005.133", 1, 1, 3)

	// act
	decision, err := catalogbook.Decide(command, "000042")

	// assert
	assert.NoError(t, err)
	assert.True(t, decision.Result.HasStateChange())
	assert.Equal(t, "000042", decision.Book.BookID)
	assert.Equal(t, 3, decision.Book.AvailableCopies)
	assert.Equal(t, 0, decision.Book.BorrowedCopies)

	assert.Equal(t, "000042-1", decision.Book.Copies[0].CopyNumber)
	assert.Equal(t, "000042-2", decision.Book.Copies[1].CopyNumber)
	assert.Equal(t, "000042-3", decision.Book.Copies[2].CopyNumber)

	assert.Equal(t, "005.133.DON.T.1.000042", decision.Book.Copies[0].AccessionCode)
	assert.Equal(t, "005.133.DON.T.1;2.000042", decision.Book.Copies[1].AccessionCode)
	assert.Equal(t, "005.133.DON.T.1;3.000042", decision.Book.Copies[2].AccessionCode)

	for _, bookCopy := range decision.Book.Copies {
		assert.Equal(t, core.StatusAvailable, bookCopy.Status)
	}
}

func Test_Decide_Success_CarriesEditionSuffixInAccessionCodes(t *testing.T) {
	// arrange
	command := catalogbook.BuildCommand("The Go Programming Language", "Donovan", "005.133", 1, 2, 2)

	// act
	decision, err := catalogbook.Decide(command, "000042")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "005.133.DON.T.1:2.000042", decision.Book.Copies[0].AccessionCode)
	assert.Equal(t, "005.133.DON.T.1:2;2.000042", decision.Book.Copies[1].AccessionCode)
}

func Test_Decide_Error_WhenCopyCountIsZero(t *testing.T) {
	// arrange
	command := catalogbook.BuildCommand("Title", "Author", "005.1", 1, 1, 0)

	// act
	_, err := catalogbook.Decide(command, "000042")

	// assert
	assert.ErrorIs(t, err, core.ErrBookWithoutCopies)
}

package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/core"
)

func Test_BuildBorrowRecord_SetsDueDateOneLoanPeriodOut(t *testing.T) {
	// arrange
	borrowedAt := core.ToTimestamp(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))

	// act
	record := core.BuildBorrowRecord("b-1", "patron-1", "000123", "000123-2", borrowedAt)

	// assert
	assert.Equal(t, borrowedAt.Add(20*24*time.Hour), record.DueDate)
	assert.Equal(t, 0, record.RenewCount)
	assert.Equal(t, 0, record.Fine)
	assert.False(t, record.IsReturned)
}

func Test_BorrowRecord_Renewed_ExtendsDueDateAndIncrementsCounter(t *testing.T) {
	// arrange
	borrowedAt := core.ToTimestamp(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))
	record := core.BuildBorrowRecord("b-1", "patron-1", "000123", "000123-2", borrowedAt)
	renewedAt := borrowedAt.Add(15 * 24 * time.Hour)

	// act
	renewed := record.Renewed(renewedAt)

	// assert
	assert.Equal(t, renewedAt.Add(20*24*time.Hour), renewed.DueDate)
	assert.Equal(t, 1, renewed.RenewCount)
	assert.Equal(t, 0, renewed.Fine)
}

func Test_BorrowRecord_CanRenew_HonorsRenewalLimit(t *testing.T) {
	record := core.BorrowRecord{RenewCount: 0}
	assert.True(t, record.CanRenew())

	record.RenewCount = core.MaxRenewals - 1
	assert.True(t, record.CanRenew())

	record.RenewCount = core.MaxRenewals
	assert.False(t, record.CanRenew())
}

func Test_BorrowRecord_Returned_OnTime_CarriesNoFine(t *testing.T) {
	// arrange
	borrowedAt := core.ToTimestamp(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))
	record := core.BuildBorrowRecord("b-1", "patron-1", "000123", "000123-2", borrowedAt)
	returnedAt := record.DueDate.Add(-time.Hour)

	// act
	closed := record.Returned(returnedAt)

	// assert
	assert.True(t, closed.IsReturned)
	assert.Equal(t, returnedAt, closed.ReturnDate)
	assert.Equal(t, 0, closed.Fine)
}

func Test_BorrowRecord_Returned_Overdue_CarriesTieredFine(t *testing.T) {
	// arrange
	borrowedAt := core.ToTimestamp(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))
	record := core.BuildBorrowRecord("b-1", "patron-1", "000123", "000123-2", borrowedAt)
	returnedAt := record.DueDate.Add(5 * 24 * time.Hour)

	// act
	closed := record.Returned(returnedAt)

	// assert
	assert.True(t, closed.IsReturned)
	assert.Equal(t, 10, closed.Fine)
}

func Test_BorrowRecord_IsOverdue(t *testing.T) {
	borrowedAt := core.ToTimestamp(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))
	record := core.BuildBorrowRecord("b-1", "patron-1", "000123", "000123-2", borrowedAt)

	assert.False(t, record.IsOverdue(record.DueDate))
	assert.True(t, record.IsOverdue(record.DueDate.Add(time.Second)))
}

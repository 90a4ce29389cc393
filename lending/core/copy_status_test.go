package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/core"
)

func Test_CopyStatus_TextRoundTrip(t *testing.T) {
	for _, status := range []core.CopyStatus{core.StatusAvailable, core.StatusBorrowed, core.StatusReserved} {
		// act
		text, err := status.MarshalText()
		assert.NoError(t, err)

		var decoded core.CopyStatus
		err = decoded.UnmarshalText(text)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, status, decoded)
	}
}

func Test_CopyStatus_UnmarshalText_RejectsUnknownValues(t *testing.T) {
	var status core.CopyStatus

	// act
	err := status.UnmarshalText([]byte("Lost"))

	// assert
	assert.ErrorIs(t, err, core.ErrUnknownCopyStatus)
}

func Test_CopyStatus_OnShelf(t *testing.T) {
	assert.True(t, core.StatusAvailable.OnShelf())
	assert.True(t, core.StatusReserved.OnShelf())
	assert.False(t, core.StatusBorrowed.OnShelf())
}

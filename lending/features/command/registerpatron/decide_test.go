package registerpatron_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending/features/command/registerpatron"
)

func Test_Decide_Success_WhenPatronIsUnknown(t *testing.T) {
	// arrange
	command := registerpatron.BuildCommand("patron-1", "Ada", true)

	// act
	decision := registerpatron.Decide(false, command)

	// assert
	assert.True(t, decision.Result.HasStateChange())
	assert.Equal(t, "patron-1", decision.Patron.PatronID)
	assert.Equal(t, "Ada", decision.Patron.Name)
	assert.True(t, decision.Patron.Verified)
	assert.Equal(t, 0, decision.Patron.ActiveBorrowCount)
	assert.Equal(t, 0, decision.Patron.FineTotal)
}

func Test_Decide_Idempotent_WhenPatronIsAlreadyRegistered(t *testing.T) {
	// arrange
	command := registerpatron.BuildCommand("patron-1", "Ada", true)

	// act
	decision := registerpatron.Decide(true, command)

	// assert
	assert.True(t, decision.Result.IsIdempotent())
}

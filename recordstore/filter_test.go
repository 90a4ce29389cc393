package recordstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/recordstore"
)

func Test_BuildRecordFilter_SanitizesRecordTypesAndKeys(t *testing.T) {
	// arrange & act
	filter := recordstore.BuildRecordFilter().
		Matching("Book", "", "Patron", "Book").
		WithKey("000002", "000001", "", "000002").
		Finalize()

	// assert
	assert.Equal(t, []string{"Book", "Patron"}, filter.RecordTypes())
	assert.Equal(t, []string{"000001", "000002"}, filter.RecordKeys())
	assert.Empty(t, filter.Predicates())
	assert.False(t, filter.AllPredicatesMustMatch())
}

func Test_BuildRecordFilter_AnyPredicates(t *testing.T) {
	// arrange & act
	filter := recordstore.BuildRecordFilter().
		Matching("BorrowRecord").
		AndAnyPredicateOf(
			recordstore.P("patronId", "patron-1"),
			recordstore.P("", "dropped"),
			recordstore.P("patronId", "patron-1"),
		).
		Finalize()

	// assert
	assert.Len(t, filter.Predicates(), 1)
	assert.Equal(t, "patronId", filter.Predicates()[0].Key())
	assert.Equal(t, "patron-1", filter.Predicates()[0].Val())
	assert.False(t, filter.AllPredicatesMustMatch())
}

func Test_BuildRecordFilter_AllPredicatesSetsConjunction(t *testing.T) {
	// arrange & act
	filter := recordstore.BuildRecordFilter().
		Matching("BorrowRecord").
		AndAllPredicatesOf(
			recordstore.P("patronId", "patron-1"),
			recordstore.P("copyNumber", "000042-1"),
		).
		Finalize()

	// assert
	assert.Len(t, filter.Predicates(), 2)
	assert.True(t, filter.AllPredicatesMustMatch())
	// predicates come back sorted by key
	assert.Equal(t, "copyNumber", filter.Predicates()[0].Key())
	assert.Equal(t, "patronId", filter.Predicates()[1].Key())
}

package recordstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/recordstore"
)

func Test_BuildStorableRecord_Success(t *testing.T) {
	// arrange & act
	record, err := recordstore.BuildStorableRecord("Book", "000042", []byte(`{"bookId":"000042"}`), 3)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "Book", record.RecordType)
	assert.Equal(t, "000042", record.RecordKey)
	assert.Equal(t, recordstore.VersionUint(3), record.Version)
}

func Test_BuildStorableRecord_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name        string
		recordType  string
		recordKey   string
		payload     []byte
		expectedErr error
	}{
		{
			name:        "empty record type",
			recordType:  "",
			recordKey:   "000042",
			payload:     []byte(`{}`),
			expectedErr: recordstore.ErrEmptyRecordType,
		},
		{
			name:        "empty record key",
			recordType:  "Book",
			recordKey:   "",
			payload:     []byte(`{}`),
			expectedErr: recordstore.ErrEmptyRecordKey,
		},
		{
			name:        "invalid payload json",
			recordType:  "Book",
			recordKey:   "000042",
			payload:     []byte(`{not json`),
			expectedErr: recordstore.ErrInvalidPayloadJSON,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := recordstore.BuildStorableRecord(tc.recordType, tc.recordKey, tc.payload, 0)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_InsertOf_And_UpdateOf(t *testing.T) {
	// arrange
	record, err := recordstore.BuildStorableRecord("Book", "000042", []byte(`{}`), 0)
	assert.NoError(t, err)

	// act
	insert := recordstore.InsertOf(record)
	update := recordstore.UpdateOf(record, 7)

	// assert
	assert.Equal(t, recordstore.VersionUint(0), insert.ExpectedVersion)
	assert.Equal(t, recordstore.VersionUint(7), update.ExpectedVersion)
}

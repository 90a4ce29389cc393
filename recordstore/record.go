package recordstore

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidPayloadJSON = errors.New("payload json is not valid")
var ErrEmptyRecordType = errors.New("record type must not be empty")
var ErrEmptyRecordKey = errors.New("record key must not be empty")

// StorableRecords is an alias type for a slice of StorableRecord
type StorableRecords = []StorableRecord

// StorableRecord is a DTO (data transfer object) used by the RecordStore to
// persist the current state of one entity and query it back.
//
// It is built on scalars to be completely agnostic of the implementation of
// the domain entities in the client code. The Version is the value the store
// observed at read time; conditional writes check it before mutating.
//
// While its properties are exported, it should only be constructed with the
// supplied factory method BuildStorableRecord.
type StorableRecord struct {
	RecordType  string
	RecordKey   string
	PayloadJSON []byte
	Version     VersionUint
	UpdatedAt   time.Time
}

// BuildStorableRecord is a factory method for StorableRecord.
//
// It populates the StorableRecord with the given scalar input.
// Returns an error if recordType or recordKey are empty, or if payloadJSON
// is not valid JSON.
func BuildStorableRecord(
	recordType string,
	recordKey string,
	payloadJSON []byte,
	version VersionUint,
) (StorableRecord, error) {

	if recordType == "" {
		return StorableRecord{}, ErrEmptyRecordType
	}

	if recordKey == "" {
		return StorableRecord{}, ErrEmptyRecordKey
	}

	if !json.Valid(payloadJSON) {
		return StorableRecord{}, ErrInvalidPayloadJSON
	}

	return StorableRecord{
		RecordType:  recordType,
		RecordKey:   recordKey,
		PayloadJSON: payloadJSON,
		Version:     version,
	}, nil
}

// RecordWrite pairs a StorableRecord with the version the writer expects the
// store to hold for it.
//
// ExpectedVersion 0 means "this record must not exist yet" and results in an
// insert; any other value results in a conditional update. A commit in which
// any write misses its expected version fails as a whole with
// ErrConcurrencyConflict.
type RecordWrite struct {
	Record          StorableRecord
	ExpectedVersion VersionUint
}

// InsertOf builds a RecordWrite that creates a brand-new record.
func InsertOf(record StorableRecord) RecordWrite {
	return RecordWrite{Record: record, ExpectedVersion: 0}
}

// UpdateOf builds a RecordWrite that replaces an existing record if and only
// if its stored version still equals expectedVersion.
func UpdateOf(record StorableRecord, expectedVersion VersionUint) RecordWrite {
	return RecordWrite{Record: record, ExpectedVersion: expectedVersion}
}

package recordstore

import (
	"errors"
)

var ErrEmptyRecordsTableName = errors.New("empty recordTableName supplied")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrConcurrencyConflict = errors.New("concurrency error, a conditional write affected no rows")
var ErrQueryingRecordsFailed = errors.New("querying records failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrCommittingRecordsFailed = errors.New("committing records failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrNoWritesSupplied = errors.New("commit called without any writes")

// VersionUint is a type alias for uint, representing the optimistic-concurrency
// version of a stored record. Version 0 means "the record does not exist yet".
type VersionUint = uint

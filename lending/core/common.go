package core

import (
	"time"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// BookIDString represents a book identifier (6-digit zero-padded sequence string)
type BookIDString = string

// CopyNumberString represents a copy identifier (the per-copy book number)
type CopyNumberString = string

// AccessionCodeString represents a derived accession code
type AccessionCodeString = string

// PatronIDString represents a patron identifier
type PatronIDString = string

// BorrowIDString represents a borrow transaction identifier
type BorrowIDString = string

// FineAmount represents a monetary fine in whole currency units
type FineAmount = int

// Timestamp represents a point in time used by the lending state machine
type Timestamp = time.Time

// ToTimestamp converts a time to Timestamp with UTC normalization and microsecond precision
func ToTimestamp(t time.Time) Timestamp {
	return t.UTC().Truncate(time.Microsecond)
}

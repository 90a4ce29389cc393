package core

import (
	"errors"
	"fmt"
)

// ErrUnknownCopyStatus is returned when decoding a status value outside the closed set.
var ErrUnknownCopyStatus = errors.New("unknown copy status")

// CopyStatus is the closed set of states a physical copy can be in.
// The zero value is StatusAvailable so that a freshly catalogued copy is
// borrowable without further setup.
type CopyStatus int

const (
	// StatusAvailable means the copy sits on the shelf and may be borrowed by anyone.
	StatusAvailable CopyStatus = iota

	// StatusBorrowed means the copy is out with a patron; exactly one open
	// borrow record exists for it.
	StatusBorrowed

	// StatusReserved means the copy sits on the shelf but is parked for the
	// patron holding the reservation on the parent book.
	StatusReserved
)

const (
	statusAvailableName = "Available"
	statusBorrowedName  = "Borrowed"
	statusReservedName  = "Reserved"
)

// String returns the canonical name of the status.
func (s CopyStatus) String() string {
	switch s {
	case StatusAvailable:
		return statusAvailableName
	case StatusBorrowed:
		return statusBorrowedName
	case StatusReserved:
		return statusReservedName
	default:
		return fmt.Sprintf("CopyStatus(%d)", int(s))
	}
}

// OnShelf reports whether the copy is physically present, which is what the
// availableCopies counter on the parent book counts.
func (s CopyStatus) OnShelf() bool {
	return s == StatusAvailable || s == StatusReserved
}

// MarshalText encodes the status by name for JSON payloads.
func (s CopyStatus) MarshalText() ([]byte, error) {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusReserved:
		return []byte(s.String()), nil
	default:
		return nil, ErrUnknownCopyStatus
	}
}

// UnmarshalText decodes a status name, rejecting anything outside the closed set.
func (s *CopyStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case statusAvailableName:
		*s = StatusAvailable
	case statusBorrowedName:
		*s = StatusBorrowed
	case statusReservedName:
		*s = StatusReserved
	default:
		return ErrUnknownCopyStatus
	}

	return nil
}

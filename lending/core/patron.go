package core

import "errors"

const (
	// MaxActiveBorrows is the number of loans a patron may hold at once.
	MaxActiveBorrows = 5

	// FineThreshold is the fine total above which new borrows are blocked.
	// Returns and renewals of existing loans are still allowed.
	FineThreshold = 300
)

// Errors returned by ledger mutations.
var (
	ErrNoActiveBorrows = errors.New("patron has no active borrows to decrement")
	ErrNegativeFine    = errors.New("fine amount must not be negative")
)

// Patron is a registered borrower together with their ledger counters.
// ActiveBorrowCount and FineTotal are mutated only alongside loan transitions
// and must stay reconciled with the open borrow records.
type Patron struct {
	PatronID          PatronIDString
	Name              string
	Verified          bool
	ActiveBorrowCount int
	FineTotal         FineAmount
}

// BuildPatron creates a registered patron with an empty ledger.
func BuildPatron(patronID PatronIDString, name string, verified bool) Patron {
	return Patron{
		PatronID: patronID,
		Name:     name,
		Verified: verified,
	}
}

// CanBorrow reports whether the patron passes all borrowing preconditions.
// Callers needing a specific rejection reason check the individual conditions
// in priority order instead.
func (p Patron) CanBorrow() bool {
	return p.Verified && p.ActiveBorrowCount < MaxActiveBorrows && p.FineTotal <= FineThreshold
}

// HasReachedBorrowLimit reports whether another loan would exceed the limit.
func (p Patron) HasReachedBorrowLimit() bool {
	return p.ActiveBorrowCount >= MaxActiveBorrows
}

// HasExceededFineThreshold reports whether accumulated fines block new borrows.
func (p Patron) HasExceededFineThreshold() bool {
	return p.FineTotal > FineThreshold
}

// WithBorrowStarted returns a copy of the patron with one more active loan.
func (p Patron) WithBorrowStarted() Patron {
	p.ActiveBorrowCount++

	return p
}

// WithBorrowEnded returns a copy of the patron with one loan closed and the
// fine from that loan added to the ledger.
func (p Patron) WithBorrowEnded(fine FineAmount) (Patron, error) {
	if p.ActiveBorrowCount < 1 {
		return Patron{}, ErrNoActiveBorrows
	}
	if fine < 0 {
		return Patron{}, ErrNegativeFine
	}

	p.ActiveBorrowCount--
	p.FineTotal += fine

	return p, nil
}

// WithFinePaid returns a copy of the patron with the given amount settled
// against the fine total. Paying more than is owed clears the total.
func (p Patron) WithFinePaid(amount FineAmount) (Patron, error) {
	if amount < 0 {
		return Patron{}, ErrNegativeFine
	}

	p.FineTotal -= amount
	if p.FineTotal < 0 {
		p.FineTotal = 0
	}

	return p, nil
}

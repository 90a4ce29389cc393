package core

import "time"

const (
	// LoanPeriodDays is the standard loan period granted on borrow and on
	// each renewal.
	LoanPeriodDays = 20

	// MaxRenewals is the total number of renewals allowed per loan.
	MaxRenewals = 3
)

// BorrowRecord is the loan ledger entry for one copy lent to one patron.
// It stays open until the copy is returned and then carries the final fine.
type BorrowRecord struct {
	BorrowID   BorrowIDString
	PatronID   PatronIDString
	BookID     BookIDString
	CopyNumber CopyNumberString
	BorrowDate Timestamp
	DueDate    Timestamp
	RenewCount int
	Fine       FineAmount
	IsReturned bool
	ReturnDate Timestamp
}

// BuildBorrowRecord creates an open loan starting at borrowedAt with the
// standard loan period.
func BuildBorrowRecord(
	borrowID BorrowIDString,
	patronID PatronIDString,
	bookID BookIDString,
	copyNumber CopyNumberString,
	borrowedAt Timestamp,
) BorrowRecord {
	return BorrowRecord{
		BorrowID:   borrowID,
		PatronID:   patronID,
		BookID:     bookID,
		CopyNumber: copyNumber,
		BorrowDate: borrowedAt,
		DueDate:    DueDateFor(borrowedAt),
		RenewCount: 0,
	}
}

// DueDateFor returns the due date for a loan period starting at the given time.
func DueDateFor(start Timestamp) Timestamp {
	return start.Add(LoanPeriodDays * 24 * time.Hour)
}

// IsOverdue reports whether the loan is past its due date at the given time.
func (r BorrowRecord) IsOverdue(now Timestamp) bool {
	return r.DueDate.Before(now)
}

// CanRenew reports whether another renewal is allowed by the renewal limit.
func (r BorrowRecord) CanRenew() bool {
	return r.RenewCount < MaxRenewals
}

// Renewed returns a copy of the record with the renewal applied: the due date
// is extended by a full loan period from the renewal time, the renewal counter
// is incremented and any accrued fine on the record is reset. Callers must
// check CanRenew and IsOverdue first.
func (r BorrowRecord) Renewed(renewedAt Timestamp) BorrowRecord {
	r.DueDate = DueDateFor(renewedAt)
	r.RenewCount++
	r.Fine = 0

	return r
}

// Returned returns a copy of the record closed at the given time, with the
// overdue fine calculated from the tiered schedule.
func (r BorrowRecord) Returned(returnedAt Timestamp) BorrowRecord {
	r.IsReturned = true
	r.ReturnDate = returnedAt
	r.Fine = FineForOverdueDays(DaysOverdue(r.DueDate, returnedAt))

	return r
}

package core

// RejectionReason names the business rule that caused a command to be refused.
// Reasons are part of the public contract: callers branch on them and they are
// stable across releases.
type RejectionReason string

const (
	// NotAvailable is used when the requested copy is not on the shelf,
	// or is parked for a different patron's reservation.
	NotAvailable RejectionReason = "NotAvailable"

	// NotVerified is used when the patron has not completed verification.
	NotVerified RejectionReason = "NotVerified"

	// BorrowLimitExceeded is used when the patron already holds the maximum
	// number of open loans.
	BorrowLimitExceeded RejectionReason = "BorrowLimitExceeded"

	// FineLimitExceeded is used when the patron's accumulated fines are above
	// the borrowing threshold.
	FineLimitExceeded RejectionReason = "FineLimitExceeded"

	// AlreadyOverdue is used when a renewal is requested for a loan that is
	// already past its due date.
	AlreadyOverdue RejectionReason = "AlreadyOverdue"

	// RenewalLimitExceeded is used when a loan has already been renewed the
	// maximum number of times.
	RenewalLimitExceeded RejectionReason = "RenewalLimitExceeded"

	// AlreadyReservedByOther is used when a book already carries a
	// reservation held by a different patron.
	AlreadyReservedByOther RejectionReason = "AlreadyReservedByOther"

	// CopyAvailable is used when a reservation is requested although copies
	// of the book are still on the shelf.
	CopyAvailable RejectionReason = "CopyAvailable"
)

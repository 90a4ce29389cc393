package renewloan

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

// Decision carries the outcome of the renewal decision together with the
// updated loan to persist when the outcome is a success.
type Decision struct {
	Result core.DecisionResult
	Loan   core.BorrowRecord
}

// Decide implements the business logic for renewing an open loan.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: An open loan of a patron on a copy
//	WHEN: RenewLoan command is received
//	THEN: the due date moves a full loan period out from now and the
//	      renewal counter increments
//	REJECTED: "AlreadyOverdue" if the due date has passed - the copy must
//	          be returned before any further renewal
//	REJECTED: "RenewalLimitExceeded" once the total renewal allowance is
//	          used up
func Decide(loan core.BorrowRecord, now core.Timestamp) Decision {
	if loan.IsOverdue(now) {
		return Decision{Result: core.RejectedResult(core.AlreadyOverdue)}
	}

	if !loan.CanRenew() {
		return Decision{Result: core.RejectedResult(core.RenewalLimitExceeded)}
	}

	return Decision{
		Result: core.SuccessResult(),
		Loan:   loan.Renewed(now),
	}
}

package registerpatron

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

// Decision carries the outcome of the registration decision together with the
// patron to persist when the outcome is a success.
type Decision struct {
	Result core.DecisionResult
	Patron core.Patron
}

// Decide implements the business logic for registering a patron.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A patron id, name and verification flag
//	WHEN: RegisterPatron command is received
//	THEN: a patron with an empty ledger is registered
//	IDEMPOTENCY: if the patron is already registered, no state change - the
//	             existing record and its ledger win over the command's fields
func Decide(alreadyRegistered bool, command Command) Decision {
	if alreadyRegistered {
		return Decision{Result: core.IdempotentResult()}
	}

	return Decision{
		Result: core.SuccessResult(),
		Patron: core.BuildPatron(command.PatronID, command.Name, command.Verified),
	}
}

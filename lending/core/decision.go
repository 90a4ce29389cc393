package core

// Outcome constants shared by all decision functions.
const (
	DecisionOutcomeSuccess    = "success"
	DecisionOutcomeIdempotent = "idempotent"
	DecisionOutcomeRejected   = "rejected"
)

// DecisionResult represents the outcome of a pure decision function.
// It carries the outcome classification together with the rejection reason
// when the command was refused by a business rule.
type DecisionResult struct {
	outcome string
	reason  RejectionReason
}

// SuccessResult creates a result for a command that changes state.
func SuccessResult() DecisionResult {
	return DecisionResult{outcome: DecisionOutcomeSuccess}
}

// IdempotentResult creates a result for a command whose effect is already in place.
func IdempotentResult() DecisionResult {
	return DecisionResult{outcome: DecisionOutcomeIdempotent}
}

// RejectedResult creates a result for a command refused by a business rule.
func RejectedResult(reason RejectionReason) DecisionResult {
	return DecisionResult{outcome: DecisionOutcomeRejected, reason: reason}
}

// HasStateChange returns true if the decision produced new state to persist.
func (r DecisionResult) HasStateChange() bool {
	return r.outcome == DecisionOutcomeSuccess
}

// IsIdempotent returns true if the command's effect was already in place.
func (r DecisionResult) IsIdempotent() bool {
	return r.outcome == DecisionOutcomeIdempotent
}

// IsRejected returns true if a business rule refused the command.
func (r DecisionResult) IsRejected() bool {
	return r.outcome == DecisionOutcomeRejected
}

// Outcome returns the outcome classification for logging and metrics labels.
func (r DecisionResult) Outcome() string {
	return r.outcome
}

// RejectionReason returns the reason when IsRejected is true, and the empty
// string otherwise.
func (r DecisionResult) RejectionReason() RejectionReason {
	return r.reason
}

package core

// DecisionResult represents the outcome of a ledger decision.
//
// It should only be constructed using SuccessDecision(event) or FailureDecision(event).
type DecisionResult struct {
	Outcome string
	Event   DomainEvent
}

const (
	successOutcome = "success"
	failureOutcome = "failure"
)

// SuccessDecision creates a DecisionResult for an accepted command; the event must be applied.
func SuccessDecision(event DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Event:   event,
	}
}

// FailureDecision creates a DecisionResult for a business rule violation; the event only documents it.
func FailureDecision(event DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: failureOutcome,
		Event:   event,
	}
}

// Accepted reports whether the decision changes the ledger state.
func (r DecisionResult) Accepted() bool {
	return r.Outcome == successOutcome
}

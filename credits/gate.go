package credits

import "context"

// Reason explains an authorization decision so the caller can render the
// right prompt: a top-up prompt for missing credits, an upgrade prompt for a
// restricted tier.
type Reason string

const (
	ReasonOK                  Reason = "ok"
	ReasonInsufficientCredits Reason = "insufficient_credits"
	ReasonTierRestricted      Reason = "tier_restricted"
)

// Decision is the structured result of an authorization check. It is a value,
// never an error: authorization questions always have an answer.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Checker is the slice of the ledger the gate needs. Both methods are
// fail-open, so the gate inherits that policy.
type Checker interface {
	HasEnoughCredits(ctx context.Context, email string, required int64) bool
	CanAccessTierFeature(ctx context.Context, email string) bool
}

// Gate authorizes billed actions by composing the balance check with an
// optional subscription tier check.
type Gate struct {
	checker Checker
}

// NewGate creates an access gate over the given checker.
// Panics if checker is nil to fail fast during initialization.
func NewGate(checker Checker) *Gate {
	if checker == nil {
		panic("credits: checker is required")
	}
	return &Gate{checker: checker}
}

// Authorize decides whether the user may perform a billed action costing
// requiredCredits. When tierFeature is set the subscription tier must also
// allow premium features. The balance is checked first so users short on both
// see the top-up prompt.
func (g *Gate) Authorize(ctx context.Context, email string, requiredCredits int64, tierFeature bool) Decision {
	if !g.checker.HasEnoughCredits(ctx, email, requiredCredits) {
		return Decision{Allowed: false, Reason: ReasonInsufficientCredits}
	}
	if tierFeature && !g.checker.CanAccessTierFeature(ctx, email) {
		return Decision{Allowed: false, Reason: ReasonTierRestricted}
	}
	return Decision{Allowed: true, Reason: ReasonOK}
}

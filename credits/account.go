package credits

import "time"

// Tier is a subscription level gating access to specific features
// independent of the credit balance.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// Period is the billing period of a subscription.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ExpiryFrom returns when a subscription paid at the given time runs out.
func (p Period) ExpiryFrom(t time.Time) time.Time {
	if p == PeriodYearly {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

// Subscription describes an active subscription. A nil *Subscription on an
// Account means the user has never subscribed; the "partially filled"
// subscription state is not representable.
type Subscription struct {
	Tier      Tier
	Period    Period
	ExpiresAt time.Time
}

// Account is a ledger row keyed by user email.
type Account struct {
	ID           string
	Email        string
	Credits      int64
	Subscription *Subscription
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

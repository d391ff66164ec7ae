package billing

import "github.com/pixelmuse/pixelmuse/credits"

// EventType is the normalized subscription lifecycle event type.
// Provider implementations map their specific event names to these.
type EventType string

const (
	EventTrialStarted     EventType = "trial_started"
	EventPaymentSucceeded EventType = "payment_succeeded"

	// EventIgnored covers everything the translator must not act on.
	EventIgnored EventType = "ignored"
)

// Event is a normalized inbound billing event. Unknown provider fields are
// dropped during parsing; only what the translator needs survives.
type Event struct {
	Type          EventType
	ProviderEvent string // original provider event name, for logs
	ID            string // provider's delivery/event id (not yet used for dedup)
	Email         string // buyer email
	Amount        int64  // payment amount in the smallest currency unit
	Period        credits.Period
	ProductID     string // provider's price/product id
	ExternalID    string // identity-provider user id, when the checkout carried one
}

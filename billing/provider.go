package billing

import "context"

// Provider abstracts the payment platform. Implementations verify webhook
// authenticity and normalize provider payloads into Events; they may also
// create hosted checkout sessions so the app never touches card data.
type Provider interface {
	// ParseWebhook validates the payload signature and returns the
	// normalized event. Must reject spoofed payloads.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)

	// CreateCheckoutLink creates a hosted checkout session for a price.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	PriceID    string // provider's price identifier
	Email      string // buyer email, pre-filled at checkout
	ExternalID string // identity-provider user id carried through custom data
	SuccessURL string // redirect after successful payment
}

// CheckoutLink represents a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
}

package billing

import "errors"

var (
	ErrMissingAPIKey             = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret      = errors.New("billing provider webhook secret is required")
	ErrInvalidEnvironment        = errors.New("invalid billing provider environment")
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrInvalidPayload            = errors.New("invalid webhook payload")
	ErrMissingPriceID            = errors.New("price ID is required")
	ErrNoCheckoutURL             = errors.New("no checkout URL returned from provider")
	ErrMissingBuyerEmail         = errors.New("webhook event has no buyer email")
)

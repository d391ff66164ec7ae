// Package billing turns subscription lifecycle events from the external
// payment platform into credit grants on the ledger.
//
// The flow is: webhook HTTP ingress (Handler) → provider-specific parsing and
// signature verification (Provider, Paddle implementation) → normalized Event
// → Translator, which holds the allow-list of event types that may mutate the
// ledger and maps them to a grant applied via credits.AddCredits.
//
// Webhook senders retry on anything but a success response and may replay the
// same delivery. The allow-list is the only replay defense: no processed
// event-id set is kept, so a replayed trial-start grants twice. The handler
// always answers success-shaped, even on internal failure, so a PixelMuse
// outage cannot trigger a retry storm; the cost is that real errors are only
// visible in our own logs.
package billing

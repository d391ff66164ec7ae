package billing

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/pixelmuse/pixelmuse/pkg/logger"
)

// maxWebhookBody bounds webhook payload reads; Paddle events are small.
const maxWebhookBody = 1 << 20

// Handler is the webhook ingress endpoint.
//
// It always answers 200 with a success-shaped body, even when parsing or
// processing fails: the sender retries on anything else, and an internal
// outage on our side must not turn into a retry storm. The trade-off is that
// failures are invisible to the sender's monitoring and only appear in our
// logs.
type Handler struct {
	provider   Provider
	translator *Translator
	log        *slog.Logger
}

// NewHandler creates the webhook handler.
// Panics if provider or translator is nil to fail fast during initialization.
func NewHandler(provider Provider, translator *Translator, log *slog.Logger) *Handler {
	if provider == nil {
		panic("billing: provider is required")
	}
	if translator == nil {
		panic("billing: translator is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{provider: provider, translator: translator, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.log.ErrorContext(ctx, "failed to read webhook body",
			logger.Component("billing.webhook"),
			logger.Error(err))
		h.acknowledge(w)
		return
	}

	event, err := h.provider.ParseWebhook(ctx, payload, r.Header.Get("Paddle-Signature"))
	if err != nil {
		h.log.ErrorContext(ctx, "failed to parse webhook",
			logger.Component("billing.webhook"),
			logger.Error(err))
		h.acknowledge(w)
		return
	}

	if err := h.translator.Process(ctx, event); err != nil {
		h.log.ErrorContext(ctx, "failed to process billing event",
			logger.Component("billing.webhook"),
			logger.EventType(event.ProviderEvent),
			logger.UserEmail(event.Email),
			logger.Error(err))
	}

	h.acknowledge(w)
}

func (h *Handler) acknowledge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

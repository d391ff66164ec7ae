package studio

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterOptions configures the studio module routes. The webhook handler and
// rate limit middleware are optional; everything else is required.
type RouterOptions struct {
	Handlers      *Handlers
	Webhook       http.Handler                    // billing webhook ingress, mounted unauthenticated
	GenerateLimit func(http.Handler) http.Handler // per-user rate limit for the billed action
}

// Router assembles the studio module.
//
// Example:
//
//	h := studio.NewHandlers(genSvc, ledger, provider, log)
//	r := chi.NewRouter()
//	r.Mount("/", studio.Router(studio.RouterOptions{
//	    Handlers: h,
//	    Webhook:  webhookHandler,
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(api chi.Router) {
		api.Use(requireUser)

		if opts.GenerateLimit != nil {
			api.With(opts.GenerateLimit).Post("/generate", opts.Handlers.Generate)
		} else {
			api.Post("/generate", opts.Handlers.Generate)
		}

		api.Get("/credits", opts.Handlers.Balance)
		api.Get("/transactions", opts.Handlers.Transactions)
		api.Post("/billing/checkout", opts.Handlers.Checkout)
	})

	if opts.Webhook != nil {
		r.Method(http.MethodPost, "/webhooks/paddle", opts.Webhook)
	}

	return r
}

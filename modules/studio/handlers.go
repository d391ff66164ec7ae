package studio

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pixelmuse/pixelmuse/billing"
	"github.com/pixelmuse/pixelmuse/credits"
	"github.com/pixelmuse/pixelmuse/generation"
	"github.com/pixelmuse/pixelmuse/pkg/logger"
)

// Ledger is the read side of the credit ledger the module renders.
type Ledger interface {
	GetCreditBalance(ctx context.Context, email string) int64
	ListTransactions(ctx context.Context, email string, limit int) ([]credits.Transaction, error)
}

// Generator runs the billed generation action.
type Generator interface {
	Generate(ctx context.Context, email string, req generation.Request) (*generation.Result, error)
}

// Handlers implements the studio module HTTP endpoints.
type Handlers struct {
	generator Generator
	ledger    Ledger
	provider  billing.Provider
	log       *slog.Logger
}

// NewHandlers creates the studio handlers.
// Panics if generator or ledger is nil to fail fast during initialization.
func NewHandlers(generator Generator, ledger Ledger, provider billing.Provider, log *slog.Logger) *Handlers {
	if generator == nil {
		panic("studio: generator is required")
	}
	if ledger == nil {
		panic("studio: ledger is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{generator: generator, ledger: ledger, provider: provider, log: log}
}

// Generate handles POST /api/generate.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	email := UserEmail(r.Context())

	var req generation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.generator.Generate(r.Context(), email, req)
	if err != nil {
		if errors.Is(err, generation.ErrEmptyPrompt) {
			writeError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		h.log.ErrorContext(r.Context(), "generation failed",
			logger.Component("studio"),
			logger.UserEmail(email),
			logger.Error(err))
		writeError(w, http.StatusBadGateway, "generation failed, you have not been charged")
		return
	}

	if !result.Decision.Allowed {
		switch result.Decision.Reason {
		case credits.ReasonInsufficientCredits:
			writeJSON(w, http.StatusPaymentRequired, map[string]string{
				"error":  "not enough credits, top up your plan to continue",
				"reason": string(result.Decision.Reason),
			})
		case credits.ReasonTierRestricted:
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error":  "multi-subject scenes need the Standard or Premium plan",
				"reason": string(result.Decision.Reason),
			})
		default:
			writeError(w, http.StatusForbidden, "not allowed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"image":   result.Image,
		"charged": result.Charged,
		"balance": h.ledger.GetCreditBalance(r.Context(), email),
	})
}

// Balance handles GET /api/credits. It never fails; the balance read
// degrades to zero on any ledger problem.
func (h *Handlers) Balance(w http.ResponseWriter, r *http.Request) {
	email := UserEmail(r.Context())
	writeJSON(w, http.StatusOK, map[string]int64{
		"credits": h.ledger.GetCreditBalance(r.Context(), email),
	})
}

// Transactions handles GET /api/transactions.
func (h *Handlers) Transactions(w http.ResponseWriter, r *http.Request) {
	email := UserEmail(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txs, err := h.ledger.ListTransactions(r.Context(), email, limit)
	if err != nil {
		if errors.Is(err, credits.ErrUserNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"transactions": []credits.Transaction{}})
			return
		}
		writeError(w, http.StatusServiceUnavailable, "transaction history is temporarily unavailable")
		return
	}
	if txs == nil {
		txs = []credits.Transaction{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

// Checkout handles POST /api/billing/checkout: it hands the user off to the
// external subscription platform's hosted checkout.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeError(w, http.StatusNotImplemented, "billing is not configured")
		return
	}

	email := UserEmail(r.Context())

	var body struct {
		PriceID    string `json:"price_id"`
		SuccessURL string `json:"success_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.provider.CreateCheckoutLink(r.Context(), billing.CheckoutRequest{
		PriceID:    body.PriceID,
		Email:      email,
		SuccessURL: body.SuccessURL,
	})
	if err != nil {
		if errors.Is(err, billing.ErrMissingPriceID) {
			writeError(w, http.StatusBadRequest, "price_id is required")
			return
		}
		h.log.ErrorContext(r.Context(), "checkout link creation failed",
			logger.Component("studio"),
			logger.UserEmail(email),
			logger.Error(err))
		writeError(w, http.StatusBadGateway, "checkout is temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": link.URL})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

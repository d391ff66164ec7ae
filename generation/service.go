package generation

import (
	"context"
	"log/slog"

	"github.com/pixelmuse/pixelmuse/credits"
	"github.com/pixelmuse/pixelmuse/pkg/logger"
)

// Authorizer is the gate deciding whether a billed action may proceed.
type Authorizer interface {
	Authorize(ctx context.Context, email string, requiredCredits int64, tierFeature bool) credits.Decision
}

// Debiter is the slice of the ledger the service charges against.
type Debiter interface {
	UseCredits(ctx context.Context, email string, amount int64) (*credits.Account, error)
}

// Result is the outcome of a generation attempt. When Decision.Allowed is
// false, Image is nil and the Reason tells the caller which prompt to render.
// Charged is false either because the action was denied, or because the debit
// failed after a successful generation (the accepted fail-open window).
type Result struct {
	Decision credits.Decision
	Image    *Image
	Charged  bool
}

// Service runs the authorize → generate → debit sequence.
type Service struct {
	gate   Authorizer
	ledger Debiter
	client Client
	log    *slog.Logger
}

// NewService creates the generation service.
// Panics if any required dependency is nil to fail fast during initialization.
func NewService(gate Authorizer, ledger Debiter, client Client, log *slog.Logger) *Service {
	if gate == nil {
		panic("generation: authorizer is required")
	}
	if ledger == nil {
		panic("generation: ledger is required")
	}
	if client == nil {
		panic("generation: client is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{gate: gate, ledger: ledger, client: client, log: log}
}

// Generate performs one billed generation for the user.
//
// The debit happens strictly after the external call succeeds, so a failed or
// timed-out generation never charges the account. A failed debit after
// success does not withhold the image; it is logged as a billing anomaly.
func (s *Service) Generate(ctx context.Context, email string, req Request) (*Result, error) {
	if req.Prompt == "" {
		return nil, ErrEmptyPrompt
	}

	decision := s.gate.Authorize(ctx, email, req.Cost(), req.MultiSubject())
	if !decision.Allowed {
		return &Result{Decision: decision}, nil
	}

	img, err := s.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &Result{Decision: decision, Image: img}

	if _, err := s.ledger.UseCredits(ctx, email, req.Cost()); err != nil {
		s.log.ErrorContext(ctx, "debit failed after successful generation",
			logger.Component("generation"),
			logger.UserEmail(email),
			logger.Amount(req.Cost()),
			logger.Error(err))
		return result, nil
	}

	result.Charged = true
	return result, nil
}

package credits

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pixelmuse/pixelmuse/pkg/logger"
)

// Service exposes the ledger operations used by the product and by billing
// webhooks. The store handle is injected once at startup; there are no
// package-level client singletons.
type Service struct {
	store Store
	log   *slog.Logger
}

// NewService creates the ledger service.
// Panics if store is nil to fail fast during initialization.
func NewService(store Store, log *slog.Logger) *Service {
	if store == nil {
		panic("credits: store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log}
}

// GetOrCreateUser resolves an account by email, creating one with a zero
// balance and no subscription on first sight. When externalID is supplied
// (identity-provider sign-up) and no account exists, the external id becomes
// the account id so the ledger row can be joined back to the provider. An
// existing account keeps its original id; the two ids are not reconciled.
func (s *Service) GetOrCreateUser(ctx context.Context, email, externalID string) (*Account, error) {
	acc, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	id := externalID
	if id == "" {
		id = uuid.NewString()
	}
	acc = &Account{ID: id, Email: email}

	if err := s.store.Create(ctx, acc); err != nil {
		// Two concurrent first requests can race on the unique email; the
		// loser reads the winner's row.
		if existing, gerr := s.store.GetByEmail(ctx, email); gerr == nil {
			return existing, nil
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	s.log.InfoContext(ctx, "ledger account created",
		logger.Component("credits"),
		logger.AccountID(acc.ID),
		logger.UserEmail(email))

	return acc, nil
}

// GetCreditBalance returns the current balance. It never fails: a missing
// account and an unreachable store both read as zero so callers rendering a
// balance can never crash on a billing outage.
func (s *Service) GetCreditBalance(ctx context.Context, email string) int64 {
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.WarnContext(ctx, "balance read failed, reporting zero",
				logger.Component("credits"),
				logger.UserEmail(email),
				logger.Error(err))
		}
		return 0
	}
	return acc.Credits
}

// HasEnoughCredits reports whether the balance covers the required amount.
// Fail-open: a store outage returns true, because blocking every user over a
// billing-check outage costs more than the abuse window it opens. A missing
// account against a healthy store is simply a zero balance.
func (s *Service) HasEnoughCredits(ctx context.Context, email string, required int64) bool {
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return required <= 0
		}
		s.log.ErrorContext(ctx, "credit check failed, allowing action",
			logger.Component("credits"),
			logger.UserEmail(email),
			logger.Error(err))
		return true
	}
	return acc.Credits >= required
}

// UseCredits debits the balance. Fail-closed: the account must exist and the
// balance must cover the amount; the decrement is a single conditional update
// at the store so concurrent debits cannot under-charge. The usage log entry
// is best-effort and never rolls back the debit.
func (s *Service) UseCredits(ctx context.Context, email string, amount int64) (*Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	updated, err := s.store.DebitBalance(ctx, acc.ID, amount)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInsufficientCredits) {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	s.appendTransaction(ctx, &Transaction{
		AccountID:   updated.ID,
		Amount:      -amount,
		Kind:        KindUsage,
		Description: "credit usage",
	})

	return updated, nil
}

// AddCredits credits the balance, creating the account first if needed. When
// sub is non-nil the subscription tier and period are updated and the expiry
// recomputed from now. The operation is intentionally not idempotent: replays
// of the same logical event double-grant, and the caller (the billing event
// translator) is responsible for gating what reaches this method.
func (s *Service) AddCredits(ctx context.Context, email string, amount int64, sub *Subscription, externalID string) (*Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	acc, err := s.GetOrCreateUser(ctx, email, externalID)
	if err != nil {
		return nil, err
	}

	if sub != nil && sub.ExpiresAt.IsZero() {
		sub.ExpiresAt = sub.Period.ExpiryFrom(timeNow())
	}

	updated, err := s.store.CreditBalance(ctx, acc.ID, amount, sub)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	s.appendTransaction(ctx, &Transaction{
		AccountID:   updated.ID,
		Amount:      amount,
		Kind:        KindPurchase,
		Description: "credit purchase",
	})

	return updated, nil
}

// CanAccessTierFeature reports whether the account's subscription tier allows
// premium features. Accounts without a subscription pass (legacy accounts
// predate tiers), basic is excluded, standard and premium pass. Fail-open on
// store errors, same rationale as HasEnoughCredits.
func (s *Service) CanAccessTierFeature(ctx context.Context, email string) bool {
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return true
		}
		s.log.ErrorContext(ctx, "tier check failed, allowing action",
			logger.Component("credits"),
			logger.UserEmail(email),
			logger.Error(err))
		return true
	}

	if acc.Subscription == nil {
		return true
	}
	return acc.Subscription.Tier != TierBasic
}

// ListTransactions returns the most recent ledger entries for the account.
func (s *Service) ListTransactions(ctx context.Context, email string, limit int) ([]Transaction, error) {
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if limit <= 0 {
		limit = 50
	}

	txs, err := s.store.ListTransactions(ctx, acc.ID, limit)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return txs, nil
}

// appendTransaction writes one log entry; failures are logged and swallowed
// so a log outage never fails or rolls back the parent balance mutation.
// Balance and log can therefore drift; reconciliation is an operator task.
func (s *Service) appendTransaction(ctx context.Context, tx *Transaction) {
	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		s.log.ErrorContext(ctx, "transaction log append failed",
			logger.Component("credits"),
			logger.AccountID(tx.AccountID),
			logger.Amount(tx.Amount),
			logger.Error(err))
	}
}

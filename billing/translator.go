package billing

import (
	"context"
	"log/slog"

	"github.com/pixelmuse/pixelmuse/credits"
	"github.com/pixelmuse/pixelmuse/pkg/logger"
)

// TranslatorConfig sets the grant amounts for events that are not covered by
// an explicit product mapping.
type TranslatorConfig struct {
	TrialCredits   int64 `env:"BILLING_TRIAL_CREDITS" envDefault:"3"`    // credits granted when a trial starts
	DefaultCredits int64 `env:"BILLING_DEFAULT_CREDITS" envDefault:"60"` // credits granted per paid period for unmapped products
}

// ProductGrant maps a provider price id to its credit amount and tier.
type ProductGrant struct {
	Credits int64
	Tier    credits.Tier
}

// Grant is what an event translates to: a credit amount and, for paid
// subscriptions, the subscription state to record alongside it.
type Grant struct {
	Credits      int64
	Subscription *credits.Subscription
}

// CreditGranter is the slice of the ledger the translator mutates.
type CreditGranter interface {
	AddCredits(ctx context.Context, email string, amount int64, sub *credits.Subscription, externalID string) (*credits.Account, error)
}

// Translator holds the allow-list of event types that may mutate the ledger.
// Everything outside the allow-list is acknowledged and dropped: webhook
// senders replay deliveries, and granting only on known-good types is the
// (incomplete) defense against duplicate grants.
type Translator struct {
	granter  CreditGranter
	cfg      TranslatorConfig
	products map[string]ProductGrant
	log      *slog.Logger
}

// NewTranslator creates the subscription event translator.
// Panics if granter is nil to fail fast during initialization.
// products may be nil; unmapped products fall back to cfg.DefaultCredits
// and the standard tier.
func NewTranslator(granter CreditGranter, cfg TranslatorConfig, products map[string]ProductGrant, log *slog.Logger) *Translator {
	if granter == nil {
		panic("billing: credit granter is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Translator{
		granter:  granter,
		cfg:      cfg,
		products: products,
		log:      log,
	}
}

// Translate maps an event to a grant, or nil when the event must be ignored.
// Pure function of the event and configuration; no I/O.
func (t *Translator) Translate(event *Event) *Grant {
	switch event.Type {
	case EventTrialStarted:
		// Trial users get credits but no tier or period.
		return &Grant{Credits: t.cfg.TrialCredits}

	case EventPaymentSucceeded:
		if event.Amount <= 0 {
			// Zero-amount payments (discount codes, plan changes mid-cycle)
			// must not grant credits.
			return nil
		}

		amount := t.cfg.DefaultCredits
		tier := credits.TierStandard
		if pg, ok := t.products[event.ProductID]; ok {
			amount = pg.Credits
			tier = pg.Tier
		}

		period := event.Period
		if period == "" {
			period = credits.PeriodMonthly
		}

		return &Grant{
			Credits:      amount,
			Subscription: &credits.Subscription{Tier: tier, Period: period},
		}

	default:
		return nil
	}
}

// Process applies an event to the ledger. Ignored events return nil so the
// webhook handler acknowledges them and the sender stops retrying.
func (t *Translator) Process(ctx context.Context, event *Event) error {
	grant := t.Translate(event)
	if grant == nil {
		t.log.InfoContext(ctx, "billing event ignored",
			logger.Component("billing.translator"),
			logger.EventType(event.ProviderEvent))
		return nil
	}

	if event.Email == "" {
		return ErrMissingBuyerEmail
	}

	acc, err := t.granter.AddCredits(ctx, event.Email, grant.Credits, grant.Subscription, event.ExternalID)
	if err != nil {
		return err
	}

	t.log.InfoContext(ctx, "billing event granted credits",
		logger.Component("billing.translator"),
		logger.EventType(event.ProviderEvent),
		logger.AccountID(acc.ID),
		logger.Amount(grant.Credits))

	return nil
}

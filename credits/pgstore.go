package credits

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixelmuse/pixelmuse/pkg/logger"
	"github.com/pixelmuse/pixelmuse/pkg/pg"
)

const accountColumns = `id, email, credits, subscription_tier, subscription_period, subscription_expires_at, created_at, updated_at`

// PgStore implements Store on PostgreSQL via pgx.
type PgStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPgStore creates the PostgreSQL-backed ledger store.
// Panics if pool is nil to fail fast during initialization.
func NewPgStore(pool *pgxpool.Pool, log *slog.Logger) *PgStore {
	if pool == nil {
		panic("credits: pgx pool is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PgStore{pool: pool, log: log}
}

// GetByEmail returns the account for the given email. The email column is
// unique, but if rows ever multiply through a data-integrity incident the
// oldest row wins deterministically and the anomaly is logged, not repaired.
func (s *PgStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1 ORDER BY created_at ASC LIMIT 2`,
		email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(accounts) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return accounts[0], nil
	default:
		s.log.WarnContext(ctx, "multiple accounts share one email, using oldest",
			logger.Component("credits.pgstore"),
			logger.UserEmail(email))
		return accounts[0], nil
	}
}

func (s *PgStore) Create(ctx context.Context, account *Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, email, credits) VALUES ($1, $2, $3)`,
		account.ID, account.Email, account.Credits)
	if pg.IsDuplicateKeyError(err) {
		s.log.DebugContext(ctx, "account already exists",
			logger.Component("credits.pgstore"),
			logger.UserEmail(account.Email))
	}
	return err
}

func (s *PgStore) CreditBalance(ctx context.Context, id string, amount int64, sub *Subscription) (*Account, error) {
	var tier, period *string
	var expiresAt *time.Time
	if sub != nil {
		t, p := string(sub.Tier), string(sub.Period)
		tier, period, expiresAt = &t, &p, &sub.ExpiresAt
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE accounts
		 SET credits = credits + $2,
		     subscription_tier = COALESCE($3, subscription_tier),
		     subscription_period = COALESCE($4, subscription_period),
		     subscription_expires_at = COALESCE($5, subscription_expires_at),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+accountColumns,
		id, amount, tier, period, expiresAt)

	acc, err := scanAccount(row)
	if pg.IsNotFoundError(err) {
		return nil, ErrUserNotFound
	}
	return acc, err
}

// DebitBalance performs the decrement-if-sufficient update in one statement
// so two concurrent debits cannot both pass the balance check.
func (s *PgStore) DebitBalance(ctx context.Context, id string, amount int64) (*Account, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE accounts
		 SET credits = credits - $2, updated_at = now()
		 WHERE id = $1 AND credits >= $2
		 RETURNING `+accountColumns,
		id, amount)

	acc, err := scanAccount(row)
	if err == nil {
		return acc, nil
	}
	if !pg.IsNotFoundError(err) {
		return nil, err
	}

	// No row updated: either the account is gone or the balance is short.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}
	return nil, ErrInsufficientCredits
}

func (s *PgStore) AppendTransaction(ctx context.Context, tx *Transaction) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO transactions (account_id, amount, kind, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		tx.AccountID, tx.Amount, string(tx.Kind), tx.Description).
		Scan(&tx.ID, &tx.CreatedAt)
	if pg.IsForeignKeyViolationError(err) {
		return ErrUserNotFound
	}
	return err
}

func (s *PgStore) ListTransactions(ctx context.Context, accountID string, limit int) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, account_id, amount, kind, description, created_at
		 FROM transactions
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		var kind string
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Amount, &kind, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Kind = TransactionKind(kind)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func scanAccount(row pgx.Row) (*Account, error) {
	var acc Account
	var tier, period *string
	var expiresAt *time.Time

	if err := row.Scan(&acc.ID, &acc.Email, &acc.Credits, &tier, &period, &expiresAt,
		&acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return nil, err
	}

	if tier != nil {
		sub := &Subscription{Tier: Tier(*tier)}
		if period != nil {
			sub.Period = Period(*period)
		}
		if expiresAt != nil {
			sub.ExpiresAt = *expiresAt
		}
		acc.Subscription = sub
	}

	return &acc, nil
}

package credits

import "context"

// Store defines the persistence interface for the ledger. The accounts table
// and the transaction log are owned exclusively by this package.
type Store interface {
	// GetByEmail returns the account for the given email (exact,
	// case-sensitive match). Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Create inserts a new account row.
	Create(ctx context.Context, account *Account) error

	// CreditBalance atomically increments the balance and, when sub is
	// non-nil, updates the subscription columns. Returns the updated account.
	CreditBalance(ctx context.Context, id string, amount int64, sub *Subscription) (*Account, error)

	// DebitBalance atomically decrements the balance if and only if the
	// current balance covers the amount. Returns ErrInsufficientCredits when
	// it does not, ErrUserNotFound when the account is missing.
	DebitBalance(ctx context.Context, id string, amount int64) (*Account, error)

	// AppendTransaction appends one immutable log entry.
	AppendTransaction(ctx context.Context, tx *Transaction) error

	// ListTransactions returns the most recent log entries for an account.
	ListTransactions(ctx context.Context, accountID string, limit int) ([]Transaction, error)
}

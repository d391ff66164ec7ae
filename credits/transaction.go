package credits

import "time"

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	KindPurchase TransactionKind = "purchase"
	KindUsage    TransactionKind = "usage"
	KindRefund   TransactionKind = "refund"
)

// Transaction is an immutable, append-only ledger entry. Positive amounts are
// credits, negative amounts are debits.
type Transaction struct {
	ID          int64
	AccountID   string
	Amount      int64
	Kind        TransactionKind
	Description string
	CreatedAt   time.Time
}

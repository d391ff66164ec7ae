package credits

import "errors"

var (
	// ErrUserNotFound indicates a debit or lookup against an unknown account.
	ErrUserNotFound = errors.New("credits: user not found")

	// ErrInsufficientCredits indicates a debit exceeding the current balance.
	ErrInsufficientCredits = errors.New("credits: insufficient credits")

	// ErrStoreUnavailable indicates the persistence layer cannot be reached.
	ErrStoreUnavailable = errors.New("credits: store unavailable")

	// ErrInvalidAmount indicates a non-positive credit or debit amount.
	ErrInvalidAmount = errors.New("credits: amount must be positive")
)

package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserEmail records the account email under the key "user_email".
func UserEmail(email string) slog.Attr {
	return slog.String("user_email", email)
}

// AccountID records the ledger account identifier under the key "account_id".
func AccountID(id string) slog.Attr {
	return slog.String("account_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// EventType records the billing event type under the key "event_type".
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

// Amount records a credit amount under the key "amount".
func Amount(n int64) slog.Attr {
	return slog.Int64("amount", n)
}

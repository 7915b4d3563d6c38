// Package mailer delivers outbound account notifications. Delivery is
// best-effort: callers log failures and never fail the triggering operation.
package mailer

import "context"

// Mailer sends a plain-text notification to a single recipient.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// Noop discards all messages. It is used when no delivery backend is
// configured, e.g. in development and tests.
type Noop struct{}

func (Noop) Send(ctx context.Context, toEmail, subject, body string) error { return nil }

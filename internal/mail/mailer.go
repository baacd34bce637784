// Package mail delivers out-of-band messages (password-reset codes).
// Delivery is an external collaborator: services invoke it fire-and-forget
// and must not couple request latency to SMTP round trips.
package mail

import "context"

// Mailer sends a plain-text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

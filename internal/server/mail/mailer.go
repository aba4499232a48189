// Package mail sends transactional email. The production implementation
// talks to the Brevo HTTP API; deployments without an API key fall back to a
// logging mailer so account flows still work in development.
package mail

import "context"

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error
}

package mail

import (
	"context"

	"github.com/shepherdhq/memberd/internal/logging"
)

// LogMailer writes messages to the log instead of delivering them. Used when
// no mail API key is configured.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	m.log.Info(ctx, "mail not sent: no api key configured",
		"to", toEmail, "subject", subject)
	return nil
}

package mail

import (
	"context"

	"github.com/dmitrijs2005/walletvault/internal/logging"
)

// LogMailer writes messages to the log instead of sending them. Used in
// development when no SMTP relay is configured; the reset code ends up in
// the server log.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "mail")}
}

func (m *LogMailer) Send(ctx context.Context, to string, subject string, body string) error {
	m.logger.Info(ctx, "mail (not sent, no relay configured)", "to", to, "subject", subject, "body", body)
	return nil
}

// Package email delivers the lead notification emails over SMTP.
package email

import (
	"context"
	"fmt"

	"monfily_backend/platform/config"
	"monfily_backend/platform/logger"
)

// Sender delivers a rendered HTML email. Implementations must respect the
// context deadline.
type Sender interface {
	Send(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NewSender builds the SMTP sender from configuration. Lead intake cannot
// function without a mail transport, so missing credentials are a startup
// error rather than a silent no-op.
func NewSender(cfg config.EmailConfig, log *logger.Logger) (Sender, error) {
	if !cfg.IsEmailConfigured() {
		return nil, fmt.Errorf("email: EMAIL_HOST, EMAIL_USER and EMAIL_PASSWORD must be set")
	}
	return NewSMTPSender(cfg, log), nil
}

// NoopSender discards every email. Only for tests and local tooling.
type NoopSender struct{}

// Send implements Sender.
func (NoopSender) Send(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)

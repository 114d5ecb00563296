package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"monfily_backend/platform/config"
	"monfily_backend/platform/logger"
)

// SMTPSender delivers emails over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	log       *logger.Logger
}

// NewSMTPSender creates a sender from the email configuration. The SMTP user
// doubles as the from address.
func NewSMTPSender(cfg config.EmailConfig, log *logger.Logger) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetEmailHost(),
		port:      cfg.GetEmailPort(),
		username:  cfg.GetEmailUser(),
		password:  cfg.GetEmailPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailUser(),
		log:       log,
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		if s.log != nil {
			s.log.EmailEvent("smtp_send_failed", toEmail, err)
		}
		return fmt.Errorf("smtp send: %w", err)
	}

	if s.log != nil {
		s.log.EmailEvent("smtp_sent", toEmail, nil)
	}
	return nil
}

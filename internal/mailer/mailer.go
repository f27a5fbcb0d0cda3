// Package mailer submits rendered digests over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/digest"
)

// Mailer sends digest messages to the configured notification recipient.
type Mailer struct {
	cfg config.SMTPConfig
}

// New creates a mailer. Missing credentials are not a construction error;
// they surface as a send failure so the pipeline can retry on the next run.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send submits the message. The returned error covers both misconfiguration
// and SMTP transport failures.
func (m *Mailer) Send(msg *digest.Message) error {
	if m.cfg.Address == "" || m.cfg.Password == "" {
		return fmt.Errorf("SMTP credentials are not configured")
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("\"ARPEJ FINDER\" <%s>", m.cfg.Address)
	mail.To = []string{m.cfg.Recipient}
	mail.Subject = msg.Subject
	mail.HTML = []byte(msg.HTML)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := mail.Send(addr, smtp.PlainAuth("", m.cfg.Address, m.cfg.Password, m.cfg.Host)); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	return nil
}

// Package mailer sends the portal's transactional e-mail over SMTP.
package mailer

import (
	"fmt"
	"log/slog"

	"ampnm-backend/config"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single HTML message.
type Sender interface {
	Send(to, subject, body string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// New returns an SMTP sender, or a sender that only logs when no SMTP host
// is configured.
func New(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		return noopSender{}
	}
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

type noopSender struct{}

func (noopSender) Send(to, subject, _ string) error {
	slog.Debug("smtp not configured, mail skipped", "to", to, "subject", subject)
	return nil
}

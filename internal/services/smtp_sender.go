package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/collegehub-edu/portal-service/internal/config"
)

// EmailSender delivers one message to one recipient.
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMTPSender delivers through the configured SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("missing email config: EMAIL_FROM is required")
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}, nil
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

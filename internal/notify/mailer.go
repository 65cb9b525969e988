// Package notify emails account credentials to staff.
package notify

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendCredentials(to, username, password, reason string) error
}

// Noop logs instead of sending. Used when SMTP is not configured.
type Noop struct{}

func (Noop) SendCredentials(to, username, _ string, reason string) error {
	slog.Info("smtp not configured, credentials not emailed", "to", to, "username", username, "reason", reason)
	return nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// NewMailer returns an SMTP mailer, or Noop when host is empty.
func NewMailer(host string, port int, username, password, from string) Mailer {
	if host == "" {
		return Noop{}
	}
	return NewSMTPMailer(host, port, username, password, from)
}

func (m *SMTPMailer) SendCredentials(to, username, password, reason string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Cash collection account: "+reason)
	msg.SetBody("text/plain", credentialsBody(username, password, reason))
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send credentials to %s: %w", to, err)
	}
	return nil
}

func credentialsBody(username, password, reason string) string {
	return fmt.Sprintf("Hello %s,\n\nYour account was %s.\n\nUsername: %s\nTemporary password: %s\n\n"+
		"You will be asked to choose a new password when you sign in.\n", username, reason, username, password)
}

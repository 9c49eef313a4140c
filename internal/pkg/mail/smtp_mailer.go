package mail

import (
	"fmt"
	"net/smtp"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LeadFox/internal/pkg/env"
)

// SendFunc delivers one message; smtp.SendMail in production.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends HTML emails via SMTP
type Mailer struct {
	cfg  env.MailConfig
	send SendFunc
}

// NewMailer returns a mailer for cfg. A nil send uses smtp.SendMail.
func NewMailer(cfg env.MailConfig, send SendFunc) *Mailer {
	if send == nil {
		send = smtp.SendMail
	}
	return &Mailer{cfg: cfg, send: send}
}

// Configured reports whether an SMTP host is set
func (m *Mailer) Configured() bool {
	return m != nil && m.cfg.Host != ""
}

// SendMail sends one HTML message
func (m *Mailer) SendMail(to string, subject string, body string) error {
	sender := m.cfg.Sender
	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Warnf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := m.send(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Errorf("SMTP send error: %v", err)
	} else {
		log.Infof("Email sent to %s via %s", to, addr)
	}
	return err
}

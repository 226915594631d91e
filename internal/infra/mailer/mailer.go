package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPMailer delivers plain-text mail through a single SMTP endpoint.
// Delivery is a boundary concern here; anything smarter (templates,
// providers, retries) belongs to whatever replaces this in production.
type SMTPMailer struct {
	addr     string
	from     string
	username string
	password string
}

func NewSMTP(addr, from, username, password string) (*SMTPMailer, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("smtp addr is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("mail from address is required")
	}

	return &SMTPMailer{
		addr:     addr,
		from:     from,
		username: username,
		password: password,
	}, nil
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient is required")
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.username != "" {
		host := m.addr
		if idx := strings.LastIndex(host, ":"); idx >= 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", m.username, m.password, host)
	}

	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

// LogMailer writes outgoing mail to the log instead of delivering it.
// Used in dev and whenever SMTP is not configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("outgoing mail",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

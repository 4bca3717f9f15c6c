// Package mailer relays contact form submissions to the site owner over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"
)

// ErrNotConfigured means no SMTP credentials were provided.
var ErrNotConfigured = errors.New("SMTP credentials not configured")

// Message is one contact form submission.
type Message struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email,max=320"`
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=10000"`
}

// Config holds the SMTP account used to relay messages.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	To       string
}

// SendFunc matches smtp.SendMail (allows injection for testing).
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Option configures the SMTPMailer.
type Option func(*SMTPMailer)

// WithSendFunc replaces the SMTP transport.
func WithSendFunc(send SendFunc) Option {
	return func(m *SMTPMailer) {
		m.send = send
	}
}

// SMTPMailer sends messages with PLAIN auth.
type SMTPMailer struct {
	cfg  Config
	send SendFunc
}

// NewSMTPMailer creates a mailer for cfg. Messages go to cfg.To, or to the
// sending account when To is empty.
func NewSMTPMailer(cfg Config, opts ...Option) *SMTPMailer {
	if cfg.To == "" {
		cfg.To = cfg.Username
	}
	m := &SMTPMailer{cfg: cfg, send: smtp.SendMail}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send relays msg. net/smtp has no context support, so a cancelled ctx
// returns early while the transport finishes in the background.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Username == "" || m.cfg.Password == "" {
		return ErrNotConfigured
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return fmt.Errorf("invalid reply address: %w", err)
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	body := compose(m.cfg.Username, m.cfg.To, msg)

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.cfg.Username, []string{m.cfg.To}, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func compose(from, to string, msg Message) []byte {
	subject := "New Contact From Portfolio: " + headerSafe(msg.Subject)

	body := fmt.Sprintf("Name: %s\r\nEmail: %s\r\nSubject: %s\r\nMessage:\r\n%s\r\n",
		headerSafe(msg.Name), headerSafe(msg.Email), headerSafe(msg.Subject), msg.Message)

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Reply-To: " + headerSafe(msg.Email) + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// headerSafe strips line breaks so user input cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

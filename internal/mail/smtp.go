package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
)

// SMTPMailer sends mail through a single SMTP relay with PLAIN auth.
type SMTPMailer struct {
	addr     string // host:port
	username string
	password string
	from     string
}

func NewSMTPMailer(addr, username, password, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, username: username, password: password, from: from}
}

func (m *SMTPMailer) Send(_ context.Context, to string, subject string, body string) error {
	host, _, err := net.SplitHostPort(m.addr)
	if err != nil {
		return fmt.Errorf("invalid smtp address %q: %v", m.addr, err)
	}

	auth := smtp.PlainAuth("", m.username, m.password, host)

	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n\r\n" +
		body + "\r\n")

	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %v", err)
	}
	return nil
}

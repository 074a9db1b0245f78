package utils

import (
	"crypto/tls"
	"fmt"
	"log"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/amaturano/event-management/config"
)

const smtpTimeout = 10 * time.Second // Timeout for SMTP connection

// Mailer sends plain-text mail through the configured SMTP server.
type Mailer struct {
	host     string
	port     string
	useTLS   bool
	username string
	password string
	from     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.MailDefaultSender
	if from == "" {
		from = cfg.MailUsername
	}
	return &Mailer{
		host:     cfg.MailServer,
		port:     cfg.MailPort,
		useTLS:   cfg.MailUseTLS,
		username: cfg.MailUsername,
		password: cfg.MailPassword,
		from:     from,
	}
}

// Configured reports whether credentials are present; without them mail is only logged.
func (m *Mailer) Configured() bool {
	return m.host != "" && m.username != "" && m.password != ""
}

func (m *Mailer) send(to, subject, body string) error {
	if !m.Configured() {
		log.Printf("⚠️ SMTP not configured. Email to %s not sent (%s)", to, subject)
		return nil
	}

	addr := net.JoinHostPort(m.host, m.port)
	conn, err := net.DialTimeout("tcp", addr, smtpTimeout)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if m.useTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	if err := client.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(buildMessage(m.from, to, subject, body)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		log.Printf("⚠️ QUIT command error (non-critical): %v", err)
	}
	log.Printf("📧 Email sent to %s", to)
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n%s", headerValue(from), headerValue(to), mime.QEncoding.Encode("utf-8", headerValue(subject)), body))
}

// headerValue keeps user-supplied text on a single header line.
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

// ======================
// Password Reset
// ======================

func (m *Mailer) SendPasswordReset(to, name, link string) error {
	subject := "Password Reset Request"
	body := fmt.Sprintf("Hello %s,\n\nTo reset your password, visit the following link:\n%s\n\n"+
		"If you did not make this request then simply ignore this email and no changes will be made.\n", name, link)
	return m.send(to, subject, body)
}

// ======================
// Messaging
// ======================

func (m *Mailer) SendMessageNotice(to, recipientName, senderName, link string) error {
	subject, body := messageNotice(recipientName, senderName, link)
	return m.send(to, subject, body)
}

func messageNotice(recipientName, senderName, link string) (subject, body string) {
	senderName = headerValue(senderName)
	subject = "New message from " + senderName
	body = fmt.Sprintf("Hello %s,\n\n%s sent you a message. Read it here:\n%s\n", recipientName, senderName, link)
	return subject, body
}

package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Mailer sends a plain-text email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPConfig is the subset of configuration the SMTP mailer needs.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer delivers mail through an SMTP relay. When the relay is not
// configured it logs the message instead of sending it (dev mode).
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// Configured reports whether a real relay will be used.
func (m *SMTPMailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.Port != ""
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.Configured() {
		log.Info().Str("to", MaskEmail(to)).Str("subject", subject).Str("body", body).Msg("[MOCK EMAIL] smtp not configured")
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}

	from := m.fromAddress()
	msg := BuildMessage(from, safe(to), safe(subject), body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	if err := m.send(addr, auth, m.envelopeFrom(), []string{to}, msg); err != nil {
		log.Error().Err(err).Str("to", MaskEmail(to)).Msg("failed to send email")
		return err
	}

	log.Info().Str("to", MaskEmail(to)).Str("subject", subject).Msg("email sent")
	return nil
}

func (m *SMTPMailer) envelopeFrom() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return m.cfg.Username
}

func (m *SMTPMailer) fromAddress() string {
	addr := m.envelopeFrom()
	if m.cfg.FromName == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", m.cfg.FromName, addr)
}

// BuildMessage renders an RFC 5322 plain-text message.
func BuildMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	sb.WriteString("\r\n")
	return []byte(sb.String())
}

// MaskEmail hides most of the local part: "john.doe@x.com" -> "j******e@x.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + domain
}

package mail

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

type Mail struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Message renders the mail as a plain text RFC 5322 message
func (m Mail) Message(date time.Time) []byte {
	buf := &bytes.Buffer{}

	fmt.Fprintf(buf, "From: %s\r\n", m.From)
	fmt.Fprintf(buf, "To: %s\r\n", m.To)
	fmt.Fprintf(buf, "Subject: %s\r\n", strings.NewReplacer("\r", "", "\n", " ").Replace(m.Subject))
	fmt.Fprintf(buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	buf.WriteString("\r\n")

	return buf.Bytes()
}

type Sender interface {
	Send(ctx context.Context, m Mail) error
}

type Config struct {
	host     string
	port     string
	user     string
	password string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		host:     env.GetVariableOrDefault(ctx, "SMTP_HOST", ""),
		port:     env.GetVariableOrDefault(ctx, "SMTP_PORT", "25"),
		user:     env.GetVariableOrDefault(ctx, "SMTP_USER", ""),
		password: env.GetVariableOrDefault(ctx, "SMTP_PASSWORD", ""),
	}
}

func (c Config) Enabled() bool {
	return c.host != ""
}

// NewSender returns an SMTP sender when a host is configured, and a sender
// that only logs the mail otherwise.
func NewSender(cfg Config) Sender {
	if !cfg.Enabled() {
		return &LogSender{}
	}

	return NewSMTPSender(cfg)
}

type SMTPSender struct {
	addr string
	auth smtp.Auth
	now  func() time.Time
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg Config) *SMTPSender {
	s := &SMTPSender{
		addr: net.JoinHostPort(cfg.host, cfg.port),
		now:  time.Now,
		send: smtp.SendMail,
	}

	if cfg.user != "" {
		s.auth = smtp.PlainAuth("", cfg.user, cfg.password, cfg.host)
	}

	return s
}

func (s *SMTPSender) Send(ctx context.Context, m Mail) error {
	err := s.send(s.addr, s.auth, m.From, []string{m.To}, m.Message(s.now()))
	if err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", m.To, err)
	}

	logging.GetFromContext(ctx).Info("mail sent", "to", m.To, "subject", m.Subject)

	return nil
}

type LogSender struct{}

func (LogSender) Send(ctx context.Context, m Mail) error {
	logging.GetFromContext(ctx).Info("mail not sent, no smtp host configured", "from", m.From, "to", m.To, "subject", m.Subject, "body", m.Body)
	return nil
}

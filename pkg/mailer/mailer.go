package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

var ErrNoRecipients = errors.New("mailer: message has no recipients")

// Message is one outgoing email. HTMLBody is optional.
type Message struct {
	Subject   string
	PlainBody string
	HTMLBody  string
	To        []string
	From      string
}

// Mailer delivers a single message. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig is the subset of config the SMTP sender needs.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP returns a gomail-backed mailer. A new SMTP connection is dialed per message.
func NewSMTP(cfg SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = m.from
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.PlainBody)
	if msg.HTMLBody != "" {
		gm.AddAlternative("text/html", msg.HTMLBody)
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

type logMailer struct {
	log zerolog.Logger
}

// NewLog returns a mailer that only logs messages. Used when no SMTP host is configured.
func NewLog(log zerolog.Logger) Mailer {
	return &logMailer{log: log}
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	m.log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_bytes", len(msg.PlainBody)).
		Msg("email (log mailer)")
	return nil
}

// New picks the SMTP mailer when a host is set, otherwise the log mailer.
func New(cfg SMTPConfig, log zerolog.Logger) Mailer {
	if cfg.Host == "" {
		return NewLog(log)
	}
	return NewSMTP(cfg)
}

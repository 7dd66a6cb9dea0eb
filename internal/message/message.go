// internal/message/message.go
//
// Outbound email over SMTP (gomail).
//
// Context
//   Contact intake sends exactly one notification per stored message.  The
//   Mailer builds a plain-text email and hands it to a gomail Dialer.  When
//   no SMTP host is configured (local development) the Mailer logs the
//   payload instead of sending, so the rest of the flow behaves normally.
//
//   gomail has no context support.  Send runs the dial in a goroutine and
//   abandons it when ctx ends, which bounds the request by Timeout.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Email is one outbound message.
type Email struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
}

// Config mirrors the mail section of the server config.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

// ErrNoRecipient is returned when Email.To is empty.
var ErrNoRecipient = errors.New("email has no recipient")

// Mailer sends Email values.  Safe for concurrent use.
type Mailer struct {
	cfg  Config
	send func(*gomail.Message) error
}

// NewMailer builds a Mailer.  An empty Host selects the log-only transport.
func NewMailer(cfg Config) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.Host == "" {
		m.send = logOnly
		return m
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	m.send = func(msg *gomail.Message) error { return d.DialAndSend(msg) }
	return m
}

// Send delivers e or returns the transport error.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if len(e.To) == 0 {
		return ErrNoRecipient
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", e.To...)
	if e.ReplyTo != "" {
		msg.SetHeader("Reply-To", e.ReplyTo)
	}
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.Text)

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- m.send(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func logOnly(msg *gomail.Message) error {
	zap.S().Infow("email (log transport)",
		"to", msg.GetHeader("To"),
		"subject", msg.GetHeader("Subject"),
	)
	return nil
}

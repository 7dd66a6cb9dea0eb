package contact

import (
	"context"

	"github.com/yanizio/brochure/internal/message"
)

// Sender is the email transport.  *message.Mailer satisfies it.
type Sender interface {
	Send(ctx context.Context, e message.Email) error
}

// MailNotifier adapts a Sender to Notifier.
type MailNotifier struct {
	Sender Sender
}

// Notify sends n as a plain-text email.
func (m MailNotifier) Notify(ctx context.Context, n Notification) error {
	return m.Sender.Send(ctx, message.Email{
		To:      []string{n.To},
		ReplyTo: n.ReplyTo,
		Subject: n.Subject,
		Text:    n.Body,
	})
}

// internal/contact/intake.go
//
// Contact form intake: validate, persist, notify.
//
// Context
// -------
// A visitor's message is stored before any email is attempted, so a mail
// outage never loses a lead.  The notification goes to the primary email
// of the site's Company, or to the configured fallback address when the
// site has no company.  A failed send is reported in Outcome.NotifyErr and
// the request still succeeds in a degraded state.
//
// Workflow
// --------
//  1. Trim every field and validate with go-playground/validator.
//  2. Insert the message with read/replied cleared and a server timestamp.
//  3. Resolve the recipient and send one notification.  No retries.
package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/brochure/internal/content"
	"github.com/yanizio/brochure/internal/logger"
	"github.com/yanizio/brochure/internal/metrics"
	"github.com/yanizio/brochure/internal/site"
)

// Submission is the raw form input plus best-effort client metadata.
type Submission struct {
	Name    string `validate:"required,max=200"`
	Email   string `validate:"required,email,max=254"`
	Phone   string `validate:"max=20"`
	Company string `validate:"max=200"`
	Subject string `validate:"required,max=300"`
	Message string `validate:"required,max=5000"`

	RemoteIP  string `validate:"-"`
	UserAgent string `validate:"-"`
	Country   string `validate:"-"`
}

func (s Submission) trimmed() Submission {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Company = strings.TrimSpace(s.Company)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)
	return s
}

// Store persists contact messages.
type Store interface {
	Insert(ctx context.Context, m *Message) (uint64, error)
}

// Notifier delivers one notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Companies looks up the recipient company for a site.  *content.Repository
// satisfies it.
type Companies interface {
	Company(ctx context.Context, s *site.Site) (*content.Company, error)
}

// Notification is the email sent to the site owner.
type Notification struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Outcome reports what Submit did beyond persisting the message.
type Outcome struct {
	Message   *Message
	Recipient string
	NotifyErr *NotificationError
}

// Degraded is true when the message was stored but the notification failed.
func (o Outcome) Degraded() bool { return o.NotifyErr != nil }

// Intake wires validation, storage, and notification.
type Intake struct {
	store      Store
	notifier   Notifier
	companies  Companies
	fallbackTo string
	validate   *validator.Validate
	now        func() time.Time
}

// NewIntake builds an Intake.  fallbackTo receives notifications for sites
// without a company.
func NewIntake(store Store, notifier Notifier, companies Companies, fallbackTo string) *Intake {
	return &Intake{
		store:      store,
		notifier:   notifier,
		companies:  companies,
		fallbackTo: fallbackTo,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// Submit validates sub, stores it for s, and notifies the site owner.  A
// *ValidationError means nothing was stored.  Any other error is a storage
// fault.  Notification failures never surface as the returned error.
func (in *Intake) Submit(ctx context.Context, s *site.Site, sub Submission) (Outcome, error) {
	sub = sub.trimmed()
	if err := in.check(sub); err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid").Inc()
		return Outcome{}, err
	}

	m := &Message{
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		Company:     sub.Company,
		Subject:     sub.Subject,
		Message:     sub.Message,
		RemoteIP:    sub.RemoteIP,
		UserAgent:   truncate(sub.UserAgent, 255),
		Country:     sub.Country,
		SubmittedAt: in.now().UTC(),
	}
	if s != nil {
		id := s.ID
		m.SiteID = &id
	}

	id, err := in.store.Insert(ctx, m)
	if err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues("error").Inc()
		return Outcome{}, fmt.Errorf("store contact message: %w", err)
	}
	m.ID = id

	out := Outcome{Message: m, Recipient: in.recipient(ctx, s)}
	if err := in.notifier.Notify(ctx, buildNotification(out.Recipient, m)); err != nil {
		out.NotifyErr = &NotificationError{To: out.Recipient, Err: err}
		metrics.NotificationFailuresTotal.Inc()
		metrics.ContactSubmissionsTotal.WithLabelValues("degraded").Inc()
		logger.FromContext(ctx).Warnw("contact notification failed",
			"message_id", m.ID, "to", out.Recipient, "err", err)
		return out, nil
	}
	metrics.ContactSubmissionsTotal.WithLabelValues("ok").Inc()
	return out, nil
}

// recipient prefers the company's primary email.  A lookup fault is logged
// and treated as "no company".
func (in *Intake) recipient(ctx context.Context, s *site.Site) string {
	c, err := in.companies.Company(ctx, s)
	if err != nil {
		logger.FromContext(ctx).Warnw("recipient lookup failed, using fallback", "err", err)
		return in.fallbackTo
	}
	if c == nil || c.PrimaryEmail == "" {
		return in.fallbackTo
	}
	return c.PrimaryEmail
}

func (in *Intake) check(sub Submission) error {
	err := in.validate.Struct(sub)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range ves {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   fieldName(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return ve
}

func buildNotification(to string, m *Message) Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Nombre: %s\n", m.Name)
	fmt.Fprintf(&b, "Email: %s\n", m.Email)
	fmt.Fprintf(&b, "Teléfono: %s\n", m.Phone)
	fmt.Fprintf(&b, "Empresa: %s\n\n", m.Company)
	fmt.Fprintf(&b, "Mensaje:\n%s\n", m.Message)
	return Notification{
		To:      to,
		ReplyTo: m.Email,
		Subject: "Nuevo mensaje de contacto: " + m.Subject,
		Body:    b.String(),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Step back to a rune boundary.
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

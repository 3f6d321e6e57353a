// Package notify delivers booking e-mails and calendar invites after a
// booking state change has been committed.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/booking"
	"github.com/nekogravitycat/coach-booking-backend/internal/civiltime"
	"github.com/nekogravitycat/coach-booking-backend/internal/coach"
)

const displayLayout = "Mon Jan 2, 2006 3:04 PM MST"

// CoachDirectory resolves the coach-facing recipients of a booking.
type CoachDirectory interface {
	GetByID(ctx context.Context, id string) (*coach.Coach, error)
	GetSettings(ctx context.Context, coachID string) (*coach.Settings, error)
}

type Config struct {
	BusinessName string
	// PublicBaseURL prefixes the approve, deny and cancel links.
	PublicBaseURL string
}

// Dispatcher implements booking.Notifier. Failures are logged and swallowed.
type Dispatcher struct {
	coaches CoachDirectory
	sender  Sender
	invites *InviteBuilder
	conv    *civiltime.Converter
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
}

var _ booking.Notifier = (*Dispatcher)(nil)

func NewDispatcher(coaches CoachDirectory, sender Sender, invites *InviteBuilder, conv *civiltime.Converter, cfg Config, logger *zap.Logger) *Dispatcher {
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &Dispatcher{
		coaches: coaches,
		sender:  sender,
		invites: invites,
		conv:    conv,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
}

// coachContact is who to address on the coach side and whether they opted in.
type coachContact struct {
	name       string
	email      string
	recipients []string
	settings   *coach.Settings
}

func (d *Dispatcher) lookupCoach(ctx context.Context, coachID string) (*coachContact, error) {
	c, err := d.coaches.GetByID(ctx, coachID)
	if err != nil {
		return nil, fmt.Errorf("load coach: %w", err)
	}
	settings, err := d.coaches.GetSettings(ctx, coachID)
	if err != nil {
		return nil, fmt.Errorf("load coach settings: %w", err)
	}

	recipients := settings.AlertEmails
	if len(recipients) == 0 {
		recipients = []string{c.Email}
	}
	return &coachContact{name: c.DisplayName, email: c.Email, recipients: recipients, settings: settings}, nil
}

func (d *Dispatcher) Notify(ctx context.Context, tmpl booking.Template, b *booking.Booking) {
	if err := ctx.Err(); err != nil {
		d.logger.Warn("Notification skipped, context done",
			zap.String("booking_id", b.ID), zap.String("template", string(tmpl)))
		return
	}

	contact, err := d.lookupCoach(ctx, b.OwnerCoachID)
	if err != nil {
		// The customer still hears from us; only the coach side is lost.
		d.logger.Error("Failed to resolve coach for notification",
			zap.String("booking_id", b.ID), zap.String("coach_id", b.OwnerCoachID), zap.Error(err))
	}

	for _, msg := range d.compose(tmpl, b, contact) {
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Error("Failed to send notification",
				zap.String("booking_id", b.ID),
				zap.String("template", string(tmpl)),
				zap.Strings("to", msg.To),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) compose(tmpl booking.Template, b *booking.Booking, contact *coachContact) []Message {
	when := d.conv.Format(b.Start, displayLayout)
	what := b.ServiceName
	if what == "" {
		what = "your lesson"
	}

	var out []Message
	customer := func(subject, body string, method Method) {
		msg := Message{To: []string{b.CustomerEmail}, Subject: subject, Body: body}
		if method != "" {
			var organizerName, organizer string
			if contact != nil {
				organizerName, organizer = contact.name, contact.email
			}
			inv := d.invites.Build(b, organizerName, organizer, method, d.now())
			msg.Calendar, msg.Method = inv.Render(d.prodID()), method
		}
		out = append(out, msg)
	}
	coachSide := func(enabled func(*coach.Settings) bool, subject, body string) {
		if contact == nil || !enabled(contact.settings) {
			return
		}
		out = append(out, Message{To: contact.recipients, Subject: subject, Body: body})
	}

	switch tmpl {
	case booking.TemplateApprovalNeeded:
		customer("Booking request received",
			fmt.Sprintf("Hi %s, we received your request for %s on %s. You will hear from us once the coach responds.", b.CustomerName, what, when), "")
		coachSide(func(s *coach.Settings) bool { return s.NotifyOnRequest },
			"New booking request",
			fmt.Sprintf("%s <%s> requested %s on %s.\nApprove: %s\nDecline: %s",
				b.CustomerName, b.CustomerEmail, what, when,
				d.link("approve", deref(b.ApprovalToken)), d.link("deny", deref(b.ApprovalToken))))

	case booking.TemplateConfirmation:
		customer("Booking confirmed",
			fmt.Sprintf("Hi %s, %s on %s is confirmed.\nCancel: %s", b.CustomerName, what, when, d.link("cancel", b.CancellationToken)),
			MethodRequest)
		coachSide(func(s *coach.Settings) bool { return s.NotifyOnConfirmation },
			"Booking confirmed",
			fmt.Sprintf("%s <%s> is booked for %s on %s.", b.CustomerName, b.CustomerEmail, what, when))

	case booking.TemplateDecline:
		body := fmt.Sprintf("Hi %s, unfortunately your request for %s on %s could not be accepted.", b.CustomerName, what, when)
		if b.DenialReason != nil && *b.DenialReason != "" {
			body += "\nReason: " + *b.DenialReason
		}
		customer("Booking request declined", body, "")

	case booking.TemplateCancellation:
		var method Method
		if b.WasConfirmed() {
			method = MethodCancel
		}
		customer("Booking cancelled",
			fmt.Sprintf("Hi %s, %s on %s has been cancelled.", b.CustomerName, what, when), method)
		coachSide(func(s *coach.Settings) bool { return s.NotifyOnCancellation },
			"Booking cancelled",
			fmt.Sprintf("%s <%s> for %s on %s was cancelled.", b.CustomerName, b.CustomerEmail, what, when))

	default:
		d.logger.Warn("Unknown notification template", zap.String("template", string(tmpl)))
	}
	return out
}

func (d *Dispatcher) link(action, token string) string {
	return fmt.Sprintf("%s/bookings/%s/%s", d.cfg.PublicBaseURL, action, token)
}

func (d *Dispatcher) prodID() string {
	name := d.cfg.BusinessName
	if name == "" {
		name = "Coach Booking"
	}
	return "-//" + name + "//Bookings//EN"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package notify

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/nekogravitycat/coach-booking-backend/internal/booking"
)

type Method string

const (
	MethodRequest Method = "REQUEST"
	MethodCancel  Method = "CANCEL"
)

// Invite is a single-event calendar object sent alongside an e-mail.
type Invite struct {
	UID           string
	Sequence      int
	Method        Method
	Stamp         time.Time
	Start         time.Time
	End           time.Time
	Summary       string
	Description   string
	Location      string
	OrganizerName string
	Organizer     string
	Attendee      string
	AttendeeName  string
}

// InviteBuilder turns bookings into invites. The UID is derived from the
// booking ID so a CANCEL replaces the earlier REQUEST in the customer's calendar.
type InviteBuilder struct {
	business  string
	location  string
	uidDomain string
}

func NewInviteBuilder(business, location, uidDomain string) *InviteBuilder {
	if uidDomain == "" {
		uidDomain = "bookings.local"
	}
	return &InviteBuilder{business: business, location: location, uidDomain: uidDomain}
}

func (ib *InviteBuilder) Build(b *booking.Booking, organizerName, organizer string, method Method, now time.Time) Invite {
	inv := Invite{
		UID:           b.ID + "@" + ib.uidDomain,
		Method:        method,
		Stamp:         now,
		Start:         b.Start,
		End:           b.End,
		Summary:       summaryFor(b, ib.business),
		Description:   b.Notes,
		Location:      ib.location,
		OrganizerName: organizerName,
		Organizer:     organizer,
		Attendee:      b.CustomerEmail,
		AttendeeName:  b.CustomerName,
	}
	if method == MethodCancel {
		inv.Sequence = 1
	}
	return inv
}

func summaryFor(b *booking.Booking, business string) string {
	name := b.ServiceName
	if name == "" {
		name = "Lesson"
	}
	if business == "" {
		return name
	}
	return name + " - " + business
}

// Render produces the RFC 5545 calendar object. Escaping and line folding
// are left to the ics encoder.
func (inv Invite) Render(prodID string) string {
	cal := ics.NewCalendar()
	cal.SetProductId(prodID)

	status := ics.ObjectStatusConfirmed
	if inv.Method == MethodCancel {
		cal.SetMethod(ics.MethodCancel)
		status = ics.ObjectStatusCancelled
	} else {
		cal.SetMethod(ics.MethodRequest)
	}

	event := cal.AddEvent(inv.UID)
	event.SetSequence(inv.Sequence)
	event.SetDtStampTime(inv.Stamp.UTC())
	event.SetStartAt(inv.Start.UTC())
	event.SetEndAt(inv.End.UTC())
	event.SetSummary(inv.Summary)
	if inv.Description != "" {
		event.SetDescription(inv.Description)
	}
	if inv.Location != "" {
		event.SetLocation(inv.Location)
	}
	if inv.Organizer != "" {
		var params []ics.PropertyParameter
		if inv.OrganizerName != "" {
			params = append(params, ics.WithCN(inv.OrganizerName))
		}
		event.SetOrganizer("mailto:"+inv.Organizer, params...)
	}
	if inv.Attendee != "" {
		event.AddAttendee("mailto:"+inv.Attendee,
			ics.WithCN(inv.AttendeeName),
			ics.ParticipationRoleReqParticipant,
			ics.WithRSVP(false),
		)
	}
	event.SetStatus(status)

	return cal.Serialize()
}

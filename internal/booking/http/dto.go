package http

import (
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/booking"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/request"
)

type CustomerRequest struct {
	Name        string `json:"customer_name" binding:"required,max=200"`
	Email       string `json:"customer_email" binding:"required,email,max=320"`
	AthleteName string `json:"athlete_name" binding:"max=200"`
	Notes       string `json:"notes" binding:"max=2000"`
}

func (r CustomerRequest) toCustomer() booking.Customer {
	return booking.Customer{
		Name:        r.Name,
		Email:       r.Email,
		AthleteName: r.AthleteName,
		Notes:       r.Notes,
	}
}

type CreatePrivateRequest struct {
	CoachID     string    `json:"coach_id" binding:"required,uuid"`
	ServiceID   string    `json:"service_id" binding:"required,uuid"`
	Start       time.Time `json:"start" binding:"required"`
	End         time.Time `json:"end" binding:"required"`
	NumAthletes int       `json:"num_athletes" binding:"omitempty,min=1,max=4"`
	CustomerRequest
}

type CreateClassRequest struct {
	OccurrenceID string `json:"occurrence_id" binding:"required,uuid"`
	ServiceID    string `json:"service_id" binding:"required,uuid"`
	CustomerRequest
}

type DenyRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type ListBookingsQuery struct {
	request.ListParams
	Status string     `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
	Type   string     `form:"type" binding:"omitempty,oneof=PRIVATE CLASS"`
	From   *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// BookingResponse is what a customer sees. It never carries the approval token.
type BookingResponse struct {
	ID                string     `json:"id"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	ApprovalStatus    string     `json:"approval_status"`
	AutoExpireAt      *time.Time `json:"auto_expire_at,omitempty"`
	CoachID           string     `json:"coach_id"`
	ServiceID         *string    `json:"service_id"`
	ServiceName       string     `json:"service_name"`
	ClassOccurrenceID *string    `json:"class_occurrence_id,omitempty"`
	Start             time.Time  `json:"start"`
	End               time.Time  `json:"end"`
	PriceCents        int        `json:"price_cents"`
	NumAthletes       int        `json:"num_athletes"`
	PrivateKind       *string    `json:"private_kind,omitempty"`
	CustomerName      string     `json:"customer_name"`
	CustomerEmail     string     `json:"customer_email"`
	AthleteName       string     `json:"athlete_name"`
	Notes             string     `json:"notes"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	DenialReason      *string    `json:"denial_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                b.ID,
		Type:              string(b.Type),
		Status:            string(b.Status),
		ApprovalStatus:    string(b.ApprovalStatus),
		AutoExpireAt:      b.AutoExpireAt,
		CoachID:           b.OwnerCoachID,
		ServiceID:         b.ServiceID,
		ServiceName:       b.ServiceName,
		ClassOccurrenceID: b.ClassOccurrenceID,
		Start:             b.Start,
		End:               b.End,
		PriceCents:        b.PriceCents,
		NumAthletes:       b.NumAthletes,
		CustomerName:      b.CustomerName,
		CustomerEmail:     b.CustomerEmail,
		AthleteName:       b.AthleteName,
		Notes:             b.Notes,
		CancelledAt:       b.CancelledAt,
		DenialReason:      b.DenialReason,
		CreatedAt:         b.CreatedAt,
	}
	if b.PrivateKind != nil {
		kind := string(*b.PrivateKind)
		resp.PrivateKind = &kind
	}
	return resp
}

// CreatedResponse hands the customer the token for their cancellation link.
type CreatedResponse struct {
	BookingResponse
	CancellationToken string `json:"cancellation_token"`
}

// ActionResponse answers approve, deny and cancel. AlreadyResolved is set
// when the booking had already left the source state.
type ActionResponse struct {
	Booking         BookingResponse `json:"booking"`
	AlreadyResolved bool            `json:"already_resolved"`
}

type SweepResponse struct {
	Expired int `json:"expired"`
}

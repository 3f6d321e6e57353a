package http

import (
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/offering"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/request"
)

// ListOfferingsRequest defines query parameters for the public catalogue.
type ListOfferingsRequest struct {
	request.ListParams
	CoachID string `form:"coach_id" binding:"omitempty,uuid"`
	Kind    string `form:"kind" binding:"omitempty,oneof=PRIVATE CLASS"`
}

type CreateOfferingRequest struct {
	Name            string `json:"name" binding:"required"`
	Kind            string `json:"kind" binding:"required,oneof=PRIVATE CLASS"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=1440"`
	PriceCents      int    `json:"price_cents" binding:"min=0"`
}

type UpdateOfferingRequest struct {
	Name            *string `json:"name"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=1,max=1440"`
	PriceCents      *int    `json:"price_cents" binding:"omitempty,min=0"`
	IsActive        *bool   `json:"is_active"`
}

type OfferingResponse struct {
	ID              string    `json:"id"`
	CoachID         string    `json:"coach_id"`
	Name            string    `json:"name"`
	Kind            string    `json:"kind"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int       `json:"price_cents"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// OfferingTag is the short form embedded in other responses.
type OfferingTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewOfferingResponse(o *offering.Offering) OfferingResponse {
	return OfferingResponse{
		ID:              o.ID,
		CoachID:         o.CoachID,
		Name:            o.Name,
		Kind:            string(o.Kind),
		DurationMinutes: o.DurationMinutes,
		PriceCents:      o.PriceCents,
		IsActive:        o.IsActive,
		CreatedAt:       o.CreatedAt,
	}
}

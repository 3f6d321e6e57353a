package http

import (
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/classes"
)

type CreateTemplateRequest struct {
	ServiceID    string `json:"service_id" binding:"required,uuid"`
	Weekday      *int   `json:"weekday" binding:"required,min=0,max=6"`
	StartMinutes *int   `json:"start_minutes" binding:"required,min=0,max=1439"`
	Capacity     int    `json:"capacity" binding:"required,min=1"`
}

type UpdateTemplateRequest struct {
	Capacity *int  `json:"capacity" binding:"omitempty,min=1"`
	IsActive *bool `json:"is_active"`
}

type TemplateResponse struct {
	ID           string    `json:"id"`
	ServiceID    string    `json:"service_id"`
	Weekday      int       `json:"weekday"`
	StartMinutes int       `json:"start_minutes"`
	Capacity     int       `json:"capacity"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewTemplateResponse(t *classes.Template) TemplateResponse {
	return TemplateResponse{
		ID:           t.ID,
		ServiceID:    t.ServiceID,
		Weekday:      int(t.Weekday),
		StartMinutes: t.StartMinutes,
		Capacity:     t.Capacity,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
	}
}

type ListOccurrencesQuery struct {
	CoachID string     `form:"coach_id" binding:"omitempty,uuid"`
	From    *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To      *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type OccurrenceResponse struct {
	ID          string    `json:"id"`
	TemplateID  string    `json:"template_id"`
	CoachID     string    `json:"coach_id"`
	ServiceID   string    `json:"service_id"`
	ServiceName string    `json:"service_name"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
	SeatsLeft   int       `json:"seats_left"`
	Status      string    `json:"status"`
}

func NewOccurrenceResponse(o *classes.Occurrence) OccurrenceResponse {
	return OccurrenceResponse{
		ID:          o.ID,
		TemplateID:  o.TemplateID,
		CoachID:     o.CoachID,
		ServiceID:   o.ServiceID,
		ServiceName: o.ServiceName,
		StartsAt:    o.StartsAt,
		EndsAt:      o.EndsAt(),
		Capacity:    o.Capacity,
		SeatsLeft:   o.SeatsLeft(),
		Status:      string(o.Status),
	}
}

type GenerateRequest struct {
	Weeks int `json:"weeks" binding:"omitempty,min=1,max=52"`
}

type GenerateResponse struct {
	Upserted int `json:"upserted"`
}

package http

import (
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/availability"
)

type SlotsQuery struct {
	Date     string `form:"date" binding:"required"`
	Duration int    `form:"duration" binding:"required"`
}

type SlotResponse struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Display string    `json:"display"`
}

type SlotsResponse struct {
	CoachID  string         `json:"coach_id"`
	Date     string         `json:"date"`
	Duration int            `json:"duration_minutes"`
	Slots    []SlotResponse `json:"slots"`
}

type CreateRuleRequest struct {
	Weekdays      []string `json:"weekdays" binding:"required,min=1,max=7"`
	StartMinutes  *int     `json:"start_minutes" binding:"required"`
	EndMinutes    *int     `json:"end_minutes" binding:"required"`
	EffectiveFrom string   `json:"effective_from"`
	EffectiveTo   string   `json:"effective_to"`
}

type RuleResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Weekdays      []string  `json:"weekdays"`
	StartMinutes  int       `json:"start_minutes"`
	EndMinutes    int       `json:"end_minutes"`
	EffectiveFrom *string   `json:"effective_from"`
	EffectiveTo   *string   `json:"effective_to"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewRuleResponse(r *availability.Rule) RuleResponse {
	days := make([]string, len(r.Weekdays))
	for i, d := range r.Weekdays {
		days[i] = string(d)
	}
	resp := RuleResponse{
		ID:           r.ID,
		Kind:         string(r.Kind),
		Weekdays:     days,
		StartMinutes: r.StartMinutes,
		EndMinutes:   r.EndMinutes,
		CreatedAt:    r.CreatedAt,
	}
	if r.EffectiveFrom != nil {
		s := r.EffectiveFrom.String()
		resp.EffectiveFrom = &s
	}
	if r.EffectiveTo != nil {
		s := r.EffectiveTo.String()
		resp.EffectiveTo = &s
	}
	return resp
}

type CreateExceptionRequest struct {
	Date        string `json:"date" binding:"required"`
	IsAvailable *bool  `json:"is_available" binding:"required"`
	Note        string `json:"note" binding:"max=500"`
}

type ListExceptionsQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type ExceptionResponse struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	IsAvailable bool      `json:"is_available"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewExceptionResponse(e *availability.Exception) ExceptionResponse {
	return ExceptionResponse{
		ID:          e.ID,
		Date:        e.Date.String(),
		IsAvailable: e.IsAvailable,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt,
	}
}

package http

import (
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/coach"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	Coach       CoachResponse `json:"coach"`
}

type CreateCoachRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
	IsShopAdmin bool   `json:"is_shop_admin"`
}

type CoachResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublicCoachResponse omits contact details.
type PublicCoachResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func NewCoachResponse(c *coach.Coach) CoachResponse {
	return CoachResponse{
		ID:          c.ID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		CreatedAt:   c.CreatedAt,
	}
}

type UpdateSettingsRequest struct {
	MustApproveRequests  *bool    `json:"must_approve_requests"`
	AlertEmails          []string `json:"alert_emails" binding:"omitempty,max=10,dive,email"`
	NotifyOnRequest      *bool    `json:"notify_on_request"`
	NotifyOnConfirmation *bool    `json:"notify_on_confirmation"`
	NotifyOnCancellation *bool    `json:"notify_on_cancellation"`
}

type SettingsResponse struct {
	MustApproveRequests  bool     `json:"must_approve_requests"`
	AlertEmails          []string `json:"alert_emails"`
	NotifyOnRequest      bool     `json:"notify_on_request"`
	NotifyOnConfirmation bool     `json:"notify_on_confirmation"`
	NotifyOnCancellation bool     `json:"notify_on_cancellation"`
	IsShopAdmin          bool     `json:"is_shop_admin"`
}

func NewSettingsResponse(s *coach.Settings) SettingsResponse {
	emails := s.AlertEmails
	if emails == nil {
		emails = []string{}
	}
	return SettingsResponse{
		MustApproveRequests:  s.MustApproveRequests,
		AlertEmails:          emails,
		NotifyOnRequest:      s.NotifyOnRequest,
		NotifyOnConfirmation: s.NotifyOnConfirmation,
		NotifyOnCancellation: s.NotifyOnCancellation,
		IsShopAdmin:          s.IsShopAdmin,
	}
}

type UpdatePolicyRequest struct {
	MinHoursNotice *int `json:"min_hours_notice" binding:"required,min=0,max=720"`
}

type PolicyResponse struct {
	MinHoursNotice int `json:"min_hours_notice"`
}

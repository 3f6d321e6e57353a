package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coach-booking-backend/internal/auth"
	"github.com/nekogravitycat/coach-booking-backend/internal/coach"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/response"
)

type Handler struct {
	service    coach.Service
	jwtManager *auth.JWTManager
}

func NewHandler(service coach.Service, jwtManager *auth.JWTManager) *Handler {
	return &Handler{service: service, jwtManager: jwtManager}
}

// Login authenticates a coach using email and password and issues an access token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	co, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(co.ID, co.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwtManager.TTL().Seconds()),
		Coach:       NewCoachResponse(co),
	})
}

func (h *Handler) Me(c *gin.Context) {
	co, err := h.service.GetByID(c.Request.Context(), auth.GetCoachID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCoachResponse(co))
}

// ListPublic lists coaches for the booking front end.
func (h *Handler) ListPublic(c *gin.Context) {
	coaches, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PublicCoachResponse, len(coaches))
	for i, co := range coaches {
		items[i] = PublicCoachResponse{ID: co.ID, DisplayName: co.DisplayName}
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// Create adds a coach account.
// Access Control: shop admin only.
func (h *Handler) Create(c *gin.Context) {
	var req CreateCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	co, err := h.service.Register(c.Request.Context(), coach.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		IsShopAdmin: req.IsShopAdmin,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewCoachResponse(co))
}

func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.service.GetSettings(c.Request.Context(), auth.GetCoachID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSettingsResponse(s))
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	s, err := h.service.UpdateSettings(c.Request.Context(), auth.GetCoachID(c), coach.UpdateSettingsRequest{
		MustApproveRequests:  req.MustApproveRequests,
		AlertEmails:          req.AlertEmails,
		NotifyOnRequest:      req.NotifyOnRequest,
		NotifyOnConfirmation: req.NotifyOnConfirmation,
		NotifyOnCancellation: req.NotifyOnCancellation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSettingsResponse(s))
}

func (h *Handler) GetPolicy(c *gin.Context) {
	p, err := h.service.GetCancellationPolicy(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, PolicyResponse{MinHoursNotice: p.MinHoursNotice})
}

// UpdatePolicy replaces the cancellation policy.
// Access Control: shop admin only.
func (h *Handler) UpdatePolicy(c *gin.Context) {
	var req UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	p, err := h.service.UpdateCancellationPolicy(c.Request.Context(), *req.MinHoursNotice)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, PolicyResponse{MinHoursNotice: p.MinHoursNotice})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coach-booking-backend/internal/auth"
	"github.com/nekogravitycat/coach-booking-backend/internal/availability"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/response"
)

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

// Slots lists bookable starts for a coach on a civil date.
func (h *Handler) Slots(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}
	var q SlotsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	slots, err := h.service.ResolveAvailableSlots(c.Request.Context(), uri.ID, q.Date, q.Duration)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = SlotResponse{Start: s.Start, End: s.End, Display: s.Display}
	}
	c.JSON(http.StatusOK, SlotsResponse{CoachID: uri.ID, Date: q.Date, Duration: q.Duration, Slots: items})
}

func (h *Handler) ListRules(c *gin.Context) {
	rules, err := h.service.ListRules(c.Request.Context(), auth.GetCoachID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RuleResponse, len(rules))
	for i, r := range rules {
		items[i] = NewRuleResponse(r)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) CreateRule(c *gin.Context) {
	var body CreateRuleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), availability.CreateRuleRequest{
		CoachID:       auth.GetCoachID(c),
		Weekdays:      body.Weekdays,
		StartMinutes:  *body.StartMinutes,
		EndMinutes:    *body.EndMinutes,
		EffectiveFrom: body.EffectiveFrom,
		EffectiveTo:   body.EffectiveTo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewRuleResponse(rule))
}

func (h *Handler) DeleteRule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := h.service.DeleteRule(c.Request.Context(), auth.GetCoachID(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListExceptions(c *gin.Context) {
	var q ListExceptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	exceptions, err := h.service.ListExceptions(c.Request.Context(), auth.GetCoachID(c), q.From, q.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ExceptionResponse, len(exceptions))
	for i, e := range exceptions {
		items[i] = NewExceptionResponse(e)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) CreateException(c *gin.Context) {
	var body CreateExceptionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	ex, err := h.service.CreateException(c.Request.Context(), availability.CreateExceptionRequest{
		CoachID:     auth.GetCoachID(c),
		Date:        body.Date,
		IsAvailable: *body.IsAvailable,
		Note:        body.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewExceptionResponse(ex))
}

func (h *Handler) DeleteException(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := h.service.DeleteException(c.Request.Context(), auth.GetCoachID(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

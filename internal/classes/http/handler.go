package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coach-booking-backend/internal/auth"
	"github.com/nekogravitycat/coach-booking-backend/internal/classes"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/response"
)

type Handler struct {
	service      classes.Service
	defaultWeeks int
}

func NewHandler(service classes.Service, defaultWeeks int) *Handler {
	if defaultWeeks <= 0 {
		defaultWeeks = classes.DefaultWeeks
	}
	return &Handler{service: service, defaultWeeks: defaultWeeks}
}

// ListOccurrences is the public class timetable.
func (h *Handler) ListOccurrences(c *gin.Context) {
	var q ListOccurrencesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	filter := classes.OccurrenceFilter{CoachID: q.CoachID, ScheduledOnly: true}
	if q.From != nil {
		filter.From = *q.From
	}
	if q.To != nil {
		filter.To = *q.To
	}

	occurrences, err := h.service.ListUpcomingOccurrences(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OccurrenceResponse, len(occurrences))
	for i, o := range occurrences {
		items[i] = NewOccurrenceResponse(o)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context(), auth.GetCoachID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		items[i] = NewTemplateResponse(t)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var body CreateTemplateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	t, err := h.service.CreateTemplate(c.Request.Context(), classes.CreateTemplateRequest{
		CoachID:      auth.GetCoachID(c),
		ServiceID:    body.ServiceID,
		Weekday:      *body.Weekday,
		StartMinutes: *body.StartMinutes,
		Capacity:     body.Capacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewTemplateResponse(t))
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}
	var body UpdateTemplateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	t, err := h.service.UpdateTemplate(c.Request.Context(), auth.GetCoachID(c), uri.ID, classes.UpdateTemplateRequest{
		Capacity: body.Capacity,
		IsActive: body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTemplateResponse(t))
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := h.service.DeleteTemplate(c.Request.Context(), auth.GetCoachID(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Generate runs the occurrence generator on demand.
func (h *Handler) Generate(c *gin.Context) {
	var body GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, err)
			return
		}
	}
	weeks := body.Weeks
	if weeks == 0 {
		weeks = h.defaultWeeks
	}

	n, err := h.service.GenerateUpcomingOccurrences(c.Request.Context(), weeks)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, GenerateResponse{Upserted: n})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coach-booking-backend/internal/auth"
	"github.com/nekogravitycat/coach-booking-backend/internal/offering"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/response"
)

type Handler struct {
	service offering.Service
}

func NewHandler(service offering.Service) *Handler {
	return &Handler{service: service}
}

// List returns active offerings, optionally for one coach.
func (h *Handler) List(c *gin.Context) {
	var req ListOfferingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	req.Normalize()

	items, total, err := h.service.List(c.Request.Context(), offering.Filter{
		CoachID:    req.CoachID,
		Kind:       offering.Kind(req.Kind),
		ActiveOnly: true,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(items), req.ListParams, total))
}

// ListMine returns every offering of the authenticated coach, inactive ones included.
func (h *Handler) ListMine(c *gin.Context) {
	var req request.ListParams
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	req.Normalize()

	items, total, err := h.service.List(c.Request.Context(), offering.Filter{
		CoachID:  auth.GetCoachID(c),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(items), req, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateOfferingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	o, err := h.service.Create(c.Request.Context(), offering.CreateRequest{
		CoachID:         auth.GetCoachID(c),
		Name:            body.Name,
		Kind:            offering.Kind(body.Kind),
		DurationMinutes: body.DurationMinutes,
		PriceCents:      body.PriceCents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewOfferingResponse(o))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewOfferingResponse(o))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var body UpdateOfferingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	o, err := h.service.Update(c.Request.Context(), auth.GetCoachID(c), uri.ID, offering.UpdateRequest{
		Name:            body.Name,
		DurationMinutes: body.DurationMinutes,
		PriceCents:      body.PriceCents,
		IsActive:        body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewOfferingResponse(o))
}

func toResponses(items []*offering.Offering) []OfferingResponse {
	out := make([]OfferingResponse, len(items))
	for i, o := range items {
		out[i] = NewOfferingResponse(o)
	}
	return out
}

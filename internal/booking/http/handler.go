package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coach-booking-backend/internal/auth"
	"github.com/nekogravitycat/coach-booking-backend/internal/booking"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreatePrivate(c *gin.Context) {
	var body CreatePrivateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.CreatePrivateBooking(c.Request.Context(), booking.CreatePrivateRequest{
		CoachID:     body.CoachID,
		ServiceID:   body.ServiceID,
		Start:       body.Start,
		End:         body.End,
		NumAthletes: body.NumAthletes,
		Customer:    body.toCustomer(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{BookingResponse: NewBookingResponse(b), CancellationToken: b.CancellationToken})
}

func (h *Handler) CreateClass(c *gin.Context) {
	var body CreateClassRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.CreateClassBooking(c.Request.Context(), booking.CreateClassRequest{
		OccurrenceID: body.OccurrenceID,
		ServiceID:    body.ServiceID,
		Customer:     body.toCustomer(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{BookingResponse: NewBookingResponse(b), CancellationToken: b.CancellationToken})
}

// lookup reads either the :token or the :id path parameter. Dashboard routes
// use the ID and the authenticated coach.
func lookup(c *gin.Context) (booking.Lookup, bool) {
	if c.Param("token") != "" {
		var uri request.ByTokenRequest
		if err := c.ShouldBindUri(&uri); err != nil {
			response.BadRequest(c, err)
			return booking.Lookup{}, false
		}
		return booking.Lookup{Token: uri.Token}, true
	}

	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return booking.Lookup{}, false
	}
	return booking.Lookup{ID: uri.ID, CoachID: auth.GetCoachID(c)}, true
}

// respondAction treats ErrAlreadyResolved as an idempotent success.
func respondAction(c *gin.Context, b *booking.Booking, err error) {
	if errors.Is(err, booking.ErrAlreadyResolved) && b != nil {
		c.JSON(http.StatusOK, ActionResponse{Booking: NewBookingResponse(b), AlreadyResolved: true})
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ActionResponse{Booking: NewBookingResponse(b)})
}

func (h *Handler) Approve(c *gin.Context) {
	l, ok := lookup(c)
	if !ok {
		return
	}
	b, err := h.service.Approve(c.Request.Context(), l)
	respondAction(c, b, err)
}

func (h *Handler) Deny(c *gin.Context) {
	l, ok := lookup(c)
	if !ok {
		return
	}
	var body DenyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, err)
			return
		}
	}
	b, err := h.service.Deny(c.Request.Context(), l, body.Reason)
	respondAction(c, b, err)
}

func (h *Handler) Cancel(c *gin.Context) {
	l, ok := lookup(c)
	if !ok {
		return
	}
	actor := booking.ActorCustomer
	if l.Token == "" {
		actor = booking.ActorCoach
	}
	b, err := h.service.Cancel(c.Request.Context(), l, actor)
	respondAction(c, b, err)
}

func (h *Handler) List(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}
	q.Normalize()

	bookings, total, err := h.service.ListCoachBookings(c.Request.Context(), booking.Filter{
		CoachID:  auth.GetCoachID(c),
		Status:   booking.Status(q.Status),
		Type:     booking.Type(q.Type),
		From:     q.From,
		To:       q.To,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, q.ListParams, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}
	b, err := h.service.GetCoachBooking(c.Request.Context(), auth.GetCoachID(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Sweep runs the expiry sweep on demand.
func (h *Handler) Sweep(c *gin.Context) {
	n, err := h.service.SweepExpired(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SweepResponse{Expired: n})
}

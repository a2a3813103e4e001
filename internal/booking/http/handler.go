package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trailstay/booking-backend/internal/auth"
	"github.com/trailstay/booking-backend/internal/booking"
	"github.com/trailstay/booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(c *gin.Context) booking.Actor {
	return booking.Actor{
		ID:   auth.GetUserID(c),
		Role: booking.Role(auth.GetUserRole(c)),
	}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateReservationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	guestID := auth.GetUserID(c)
	if guestID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		PropertyID: body.PropertyID,
		GuestID:    guestID,
		CheckIn:    body.CheckIn,
		CheckOut:   body.CheckOut,
		Guests:     body.Guests,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReservationResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var q ListReservationsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	// Non-host callers only see their own reservations.
	guestID := q.GuestID
	if auth.GetUserRole(c) != string(booking.RoleHost) {
		guestID = auth.GetUserID(c)
	}

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		PropertyID: q.PropertyID,
		GuestID:    guestID,
		Status:     q.Status,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ReservationResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewReservationResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body ChangeStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.service.ChangeStatus(c.Request.Context(), id, actorFrom(c), booking.Status(body.Status), body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(b))
}

func (h *Handler) Reschedule(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body RescheduleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.service.Reschedule(c.Request.Context(), id, actorFrom(c), body.CheckIn, body.CheckOut)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(b))
}

// CheckAvailability is a read-only probe; a 200 with available=false is not an
// error from the transport's point of view.
func (h *Handler) CheckAvailability(c *gin.Context) {
	var q AvailabilityRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	err := h.service.CheckAvailability(c.Request.Context(), q.PropertyID, q.CheckIn, q.CheckOut, q.Guests)
	if err != nil {
		switch err {
		case booking.ErrNotAvailable, booking.ErrNotBookable, booking.ErrOutsideWindow,
			booking.ErrGuestCount, booking.ErrMinStay:
			c.JSON(http.StatusOK, AvailabilityResponse{Available: false, Reason: err.Error()})
		default:
			response.Error(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{Available: true})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trailstay/booking-backend/internal/auth"
	"github.com/trailstay/booking-backend/internal/pkg/response"
	"github.com/trailstay/booking-backend/internal/tourbooking"
)

type Handler struct {
	service tourbooking.Service
}

func NewHandler(service tourbooking.Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(c *gin.Context) tourbooking.Actor {
	role := tourbooking.RoleParticipant
	if auth.GetUserRole(c) == string(tourbooking.RoleGuide) {
		role = tourbooking.RoleGuide
	}
	return tourbooking.Actor{ID: auth.GetUserID(c), Role: role}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateTourBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	participants := make([]tourbooking.Participant, len(body.Participants))
	for i, p := range body.Participants {
		participants[i] = tourbooking.Participant{Name: p.Name, Email: p.Email}
	}

	b, err := h.service.Create(c.Request.Context(), tourbooking.CreateRequest{
		ScheduleID:   body.ScheduleID,
		UserID:       userID,
		Participants: participants,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewTourBookingResponse(b))
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

	c.JSON(http.StatusOK, NewTourBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var q ListTourBookingsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	// Non-guide callers only see their own bookings.
	userID := q.UserID
	if auth.GetUserRole(c) != string(tourbooking.RoleGuide) {
		userID = auth.GetUserID(c)
	}

	bookings, total, err := h.service.List(c.Request.Context(), tourbooking.Filter{
		ScheduleID: q.ScheduleID,
		TourID:     q.TourID,
		UserID:     userID,
		Status:     q.Status,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TourBookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewTourBookingResponse(b)
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

	b, err := h.service.ChangeStatus(c.Request.Context(), id, actorFrom(c), tourbooking.Status(body.Status), body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTourBookingResponse(b))
}

func (h *Handler) CheckIn(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.CheckIn(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTourBookingResponse(b))
}

func (h *Handler) CheckOut(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.CheckOut(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTourBookingResponse(b))
}

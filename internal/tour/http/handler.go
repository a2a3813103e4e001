package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trailstay/booking-backend/internal/auth"
	"github.com/trailstay/booking-backend/internal/pkg/response"
	"github.com/trailstay/booking-backend/internal/tour"
)

type Handler struct {
	service tour.Service
}

func NewHandler(service tour.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateTourRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	guideID := auth.GetUserID(c)
	if guideID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	t, err := h.service.Create(c.Request.Context(), tour.CreateRequest{
		GuideID:      guideID,
		Name:         body.Name,
		PriceCents:   body.PriceCents,
		Currency:     body.Currency,
		MinGroupSize: body.MinGroupSize,
		MaxGroupSize: body.MaxGroupSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewTourResponse(t))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTourResponse(t))
}

func (h *Handler) List(c *gin.Context) {
	var q ListToursRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	tours, total, err := h.service.List(c.Request.Context(), tour.Filter{
		GuideID:    q.GuideID,
		ActiveOnly: q.ActiveOnly,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TourResponse, len(tours))
	for i, t := range tours {
		items[i] = NewTourResponse(t)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body UpdateTourRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	t, err := h.service.Update(c.Request.Context(), id, tour.UpdateRequest{
		Name:         body.Name,
		PriceCents:   body.PriceCents,
		Currency:     body.Currency,
		MinGroupSize: body.MinGroupSize,
		MaxGroupSize: body.MaxGroupSize,
	}, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTourResponse(t))
}

func (h *Handler) Deactivate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body CreateScheduleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	sched, err := h.service.CreateSchedule(c.Request.Context(), tour.CreateScheduleRequest{
		TourID:         id,
		StartDate:      body.StartDate,
		EndDate:        body.EndDate,
		PriceCents:     body.PriceCents,
		AvailableSlots: body.AvailableSlots,
	}, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewScheduleResponse(sched))
}

func (h *Handler) ListSchedules(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	schedules, err := h.service.ListSchedules(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ScheduleResponse, len(schedules))
	for i, s := range schedules {
		items[i] = NewScheduleResponse(s)
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetSchedule(c *gin.Context) {
	scheduleID := c.Param("scheduleID")
	if _, err := uuid.Parse(scheduleID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	sched, err := h.service.GetSchedule(c.Request.Context(), scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewScheduleResponse(sched))
}

func (h *Handler) CloseSchedule(c *gin.Context) {
	scheduleID := c.Param("scheduleID")
	if _, err := uuid.Parse(scheduleID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.CloseSchedule(c.Request.Context(), scheduleID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

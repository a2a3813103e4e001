package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trailstay/booking-backend/internal/auth"
	"github.com/trailstay/booking-backend/internal/blockedrange"
	"github.com/trailstay/booking-backend/internal/daterange"
	"github.com/trailstay/booking-backend/internal/pkg/response"
	"github.com/trailstay/booking-backend/internal/property"
)

type Handler struct {
	service      property.Service
	blockService blockedrange.Service
}

func NewHandler(service property.Service, blockService blockedrange.Service) *Handler {
	return &Handler{service: service, blockService: blockService}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreatePropertyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	hostID := auth.GetUserID(c)
	if hostID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	minStay := body.MinStayNights
	if minStay < 1 {
		minStay = 1
	}

	p, err := h.service.Create(c.Request.Context(), property.CreateRequest{
		HostID:        hostID,
		Name:          body.Name,
		NightlyCents:  body.NightlyCents,
		TwoNightCents: body.TwoNightCents,
		MaxGuests:     body.MaxGuests,
		MinStayNights: minStay,
		AvailableFrom: body.AvailableFrom,
		AvailableTo:   body.AvailableTo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPropertyResponse(p))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPropertyResponse(p))
}

func (h *Handler) List(c *gin.Context) {
	var q ListPropertiesRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	props, total, err := h.service.List(c.Request.Context(), property.Filter{
		HostID:   q.HostID,
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PropertyResponse, len(props))
	for i, p := range props {
		items[i] = NewPropertyResponse(p)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body UpdatePropertyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, property.UpdateRequest{
		Name:          body.Name,
		NightlyCents:  body.NightlyCents,
		TwoNightCents: body.TwoNightCents,
		MaxGuests:     body.MaxGuests,
		MinStayNights: body.MinStayNights,
		AvailableFrom: body.AvailableFrom,
		AvailableTo:   body.AvailableTo,
		Status:        body.Status,
	}, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPropertyResponse(p))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateBlock(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body CreateBlockRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	br, err := h.blockService.Create(c.Request.Context(), blockedrange.CreateRequest{
		PropertyID: id,
		StartDate:  body.StartDate,
		EndDate:    body.EndDate,
		Reason:     body.Reason,
	}, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBlockResponse(br))
}

func (h *Handler) ListBlocks(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	window, err := windowFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	blocks, err := h.blockService.ListActive(c.Request.Context(), id, window)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BlockResponse, len(blocks))
	for i, br := range blocks {
		items[i] = NewBlockResponse(br)
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) RemoveBlock(c *gin.Context) {
	id := c.Param("id")
	blockID := c.Param("blockID")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}
	if _, err := uuid.Parse(blockID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.blockService.Remove(c.Request.Context(), blockID, id, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Calendar renders per-day availability over a window. Days covered by any
// active blocked range, manual or derived, show as unavailable.
func (h *Handler) Calendar(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var q CalendarRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	window, err := daterange.New(q.From, q.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be before to"})
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	blocks, err := h.blockService.ListActive(c.Request.Context(), id, window)
	if err != nil {
		response.Error(c, err)
		return
	}

	listingWindow := p.Window()
	resp := CalendarResponse{PropertyID: id, Days: make([]CalendarDay, 0)}
	for day := range window.Days() {
		available := p.Bookable() && listingWindow.ContainsDate(day)
		if available {
			dayRange := daterange.DateRange{Start: day, End: day.AddDate(0, 0, 1)}
			for _, br := range blocks {
				if br.Range.Overlaps(dayRange) {
					available = false
					break
				}
			}
		}
		resp.Days = append(resp.Days, CalendarDay{Date: day.Format("2006-01-02"), Available: available})
	}

	c.JSON(http.StatusOK, resp)
}

func windowFromQuery(c *gin.Context) (daterange.DateRange, error) {
	var window daterange.DateRange
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return daterange.DateRange{}, err
		}
		window.Start = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return daterange.DateRange{}, err
		}
		window.End = t
	}
	return window, nil
}

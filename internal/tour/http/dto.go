package http

import (
	"time"

	"github.com/trailstay/booking-backend/internal/pkg/request"
	"github.com/trailstay/booking-backend/internal/tour"
)

// ListToursRequest defines query parameters for listing tours.
type ListToursRequest struct {
	request.ListParams
	GuideID    string `form:"guide_id" binding:"omitempty,uuid"`
	ActiveOnly bool   `form:"active_only"`
}

type CreateTourRequest struct {
	Name         string `json:"name" binding:"required"`
	PriceCents   int64  `json:"price_cents" binding:"required,min=1"`
	Currency     string `json:"currency" binding:"required,len=3"`
	MinGroupSize int    `json:"min_group_size" binding:"required,min=1"`
	MaxGroupSize int    `json:"max_group_size" binding:"required,min=1"`
}

type UpdateTourRequest struct {
	Name         *string `json:"name"`
	PriceCents   *int64  `json:"price_cents" binding:"omitempty,min=1"`
	Currency     *string `json:"currency" binding:"omitempty,len=3"`
	MinGroupSize *int    `json:"min_group_size" binding:"omitempty,min=1"`
	MaxGroupSize *int    `json:"max_group_size" binding:"omitempty,min=1"`
}

type TourResponse struct {
	ID           string    `json:"id"`
	GuideID      string    `json:"guide_id"`
	Name         string    `json:"name"`
	PriceCents   int64     `json:"price_cents"`
	Currency     string    `json:"currency"`
	MinGroupSize int       `json:"min_group_size"`
	MaxGroupSize int       `json:"max_group_size"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewTourResponse(t *tour.Tour) TourResponse {
	return TourResponse{
		ID:           t.ID,
		GuideID:      t.GuideID,
		Name:         t.Name,
		PriceCents:   t.PriceCents,
		Currency:     t.Currency,
		MinGroupSize: t.MinGroupSize,
		MaxGroupSize: t.MaxGroupSize,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type CreateScheduleRequest struct {
	StartDate      time.Time `json:"start_date" binding:"required"`
	EndDate        time.Time `json:"end_date" binding:"required"`
	PriceCents     int64     `json:"price_cents" binding:"omitempty,min=1"`
	AvailableSlots int       `json:"available_slots" binding:"required,min=1"`
}

type ScheduleResponse struct {
	ID             string    `json:"id"`
	TourID         string    `json:"tour_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	PriceCents     int64     `json:"price_cents,omitempty"`
	AvailableSlots int       `json:"available_slots"`
	BookedSlots    int       `json:"booked_slots"`
	FreeSlots      int       `json:"free_slots"`
	IsAvailable    bool      `json:"is_available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewScheduleResponse(s *tour.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:             s.ID,
		TourID:         s.TourID,
		StartDate:      s.Range.Start,
		EndDate:        s.Range.End,
		PriceCents:     s.PriceCents,
		AvailableSlots: s.AvailableSlots,
		BookedSlots:    s.BookedSlots,
		FreeSlots:      s.FreeSlots(),
		IsAvailable:    s.IsAvailable,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

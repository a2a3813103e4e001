package http

import (
	"time"

	"github.com/trailstay/booking-backend/internal/blockedrange"
	"github.com/trailstay/booking-backend/internal/pkg/request"
	"github.com/trailstay/booking-backend/internal/property"
)

// ListPropertiesRequest defines query parameters for listing properties.
type ListPropertiesRequest struct {
	request.ListParams
	HostID string `form:"host_id" binding:"omitempty,uuid"`
	Status string `form:"status" binding:"omitempty,oneof=pending active inactive"`
}

type CreatePropertyRequest struct {
	Name          string    `json:"name" binding:"required"`
	NightlyCents  int64     `json:"nightly_cents" binding:"required,min=1"`
	TwoNightCents int64     `json:"two_night_cents" binding:"omitempty,min=0"`
	MaxGuests     int       `json:"max_guests" binding:"required,min=1"`
	MinStayNights int       `json:"min_stay_nights" binding:"omitempty,min=1"`
	AvailableFrom time.Time `json:"available_from" binding:"required"`
	AvailableTo   time.Time `json:"available_to" binding:"required"`
}

type UpdatePropertyRequest struct {
	Name          *string    `json:"name"`
	NightlyCents  *int64     `json:"nightly_cents" binding:"omitempty,min=1"`
	TwoNightCents *int64     `json:"two_night_cents" binding:"omitempty,min=0"`
	MaxGuests     *int       `json:"max_guests" binding:"omitempty,min=1"`
	MinStayNights *int       `json:"min_stay_nights" binding:"omitempty,min=1"`
	AvailableFrom *time.Time `json:"available_from"`
	AvailableTo   *time.Time `json:"available_to"`
	Status        *string    `json:"status" binding:"omitempty,oneof=pending active inactive"`
}

type PropertyResponse struct {
	ID            string    `json:"id"`
	HostID        string    `json:"host_id"`
	Name          string    `json:"name"`
	NightlyCents  int64     `json:"nightly_cents"`
	TwoNightCents int64     `json:"two_night_cents,omitempty"`
	MaxGuests     int       `json:"max_guests"`
	MinStayNights int       `json:"min_stay_nights"`
	AvailableFrom time.Time `json:"available_from"`
	AvailableTo   time.Time `json:"available_to"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID:            p.ID,
		HostID:        p.HostID,
		Name:          p.Name,
		NightlyCents:  p.NightlyCents,
		TwoNightCents: p.TwoNightCents,
		MaxGuests:     p.MaxGuests,
		MinStayNights: p.MinStayNights,
		AvailableFrom: p.AvailableFrom,
		AvailableTo:   p.AvailableTo,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type CreateBlockRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
	Reason    string    `json:"reason"`
}

type BlockResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Reason     string    `json:"reason,omitempty"`
	Derived    bool      `json:"derived"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewBlockResponse(br *blockedrange.BlockedRange) BlockResponse {
	return BlockResponse{
		ID:         br.ID,
		PropertyID: br.PropertyID,
		StartDate:  br.Range.Start,
		EndDate:    br.Range.End,
		Reason:     br.Reason,
		Derived:    br.Tag != "",
		CreatedAt:  br.CreatedAt,
	}
}

type CalendarRequest struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

type CalendarDay struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

type CalendarResponse struct {
	PropertyID string        `json:"property_id"`
	Days       []CalendarDay `json:"days"`
}

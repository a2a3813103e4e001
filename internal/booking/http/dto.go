package http

import (
	"time"

	"github.com/trailstay/booking-backend/internal/booking"
	"github.com/trailstay/booking-backend/internal/pkg/request"
)

// ListReservationsRequest defines query parameters for listing reservations.
type ListReservationsRequest struct {
	request.ListParams
	PropertyID string `form:"property_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	GuestID    string `form:"guest_id" binding:"omitempty,uuid"`
}

type CreateReservationRequest struct {
	PropertyID string    `json:"property_id" binding:"required,uuid"`
	CheckIn    time.Time `json:"check_in" binding:"required"`
	CheckOut   time.Time `json:"check_out" binding:"required"`
	Guests     int       `json:"guests" binding:"required,min=1"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed completed cancelled"`
	Reason string `json:"reason"`
}

type RescheduleRequest struct {
	CheckIn  time.Time `json:"check_in" binding:"required"`
	CheckOut time.Time `json:"check_out" binding:"required"`
}

type AvailabilityRequest struct {
	PropertyID string    `form:"property_id" binding:"required,uuid"`
	CheckIn    time.Time `form:"check_in" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	CheckOut   time.Time `form:"check_out" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Guests     int       `form:"guests" binding:"required,min=1"`
}

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type ReservationResponse struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"property_id"`
	GuestID       string    `json:"guest_id"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Nights        int       `json:"nights"`
	Guests        int       `json:"guests"`
	TotalCents    int64     `json:"total_cents"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CancelReason  string    `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewReservationResponse(b *booking.Booking) ReservationResponse {
	return ReservationResponse{
		ID:            b.ID,
		PropertyID:    b.PropertyID,
		GuestID:       b.GuestID,
		CheckIn:       b.Range.Start,
		CheckOut:      b.Range.End,
		Nights:        b.Range.Nights(),
		Guests:        b.Guests,
		TotalCents:    b.TotalCents,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		CancelReason:  b.CancelReason,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

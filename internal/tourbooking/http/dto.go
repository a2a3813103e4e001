package http

import (
	"time"

	"github.com/trailstay/booking-backend/internal/pkg/request"
	"github.com/trailstay/booking-backend/internal/tourbooking"
)

// ListTourBookingsRequest defines query parameters for listing tour bookings.
type ListTourBookingsRequest struct {
	request.ListParams
	ScheduleID string `form:"schedule_id" binding:"omitempty,uuid"`
	TourID     string `form:"tour_id" binding:"omitempty,uuid"`
	UserID     string `form:"user_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending confirmed completed cancelled no_show"`
}

type ParticipantBody struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

type CreateTourBookingRequest struct {
	ScheduleID   string            `json:"schedule_id" binding:"required,uuid"`
	Participants []ParticipantBody `json:"participants" binding:"required,min=1,dive"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed completed cancelled no_show"`
	Reason string `json:"reason"`
}

type ParticipantResponse struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type TourBookingResponse struct {
	ID            string                `json:"id"`
	ScheduleID    string                `json:"schedule_id"`
	TourID        string                `json:"tour_id"`
	UserID        string                `json:"user_id"`
	Participants  []ParticipantResponse `json:"participants"`
	TotalCents    int64                 `json:"total_cents"`
	Currency      string                `json:"currency"`
	Status        string                `json:"status"`
	CheckInStatus string                `json:"check_in_status"`
	CancelReason  string                `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func NewTourBookingResponse(b *tourbooking.TourBooking) TourBookingResponse {
	participants := make([]ParticipantResponse, len(b.Participants))
	for i, p := range b.Participants {
		participants[i] = ParticipantResponse{Name: p.Name, Email: p.Email}
	}

	return TourBookingResponse{
		ID:            b.ID,
		ScheduleID:    b.ScheduleID,
		TourID:        b.TourID,
		UserID:        b.UserID,
		Participants:  participants,
		TotalCents:    b.TotalCents,
		Currency:      b.Currency,
		Status:        string(b.Status),
		CheckInStatus: string(b.CheckInStatus),
		CancelReason:  b.CancelReason,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

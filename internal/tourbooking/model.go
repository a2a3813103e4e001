package tourbooking

import (
	"net/http"
	"time"

	"github.com/trailstay/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "tour booking not found")
	ErrInsufficientSlots   = apperror.New(http.StatusConflict, "not enough slots available")
	ErrScheduleUnavailable = apperror.New(http.StatusConflict, "schedule is not open for booking")
	ErrScheduleInPast      = apperror.New(http.StatusBadRequest, "schedule has already started")
	ErrGroupSize           = apperror.New(http.StatusBadRequest, "group size outside tour bounds")
	ErrNoParticipants      = apperror.New(http.StatusBadRequest, "at least one participant is required")
	ErrPermissionDenied    = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidTransition   = apperror.New(http.StatusBadRequest, "invalid status transition")
	ErrReasonRequired      = apperror.New(http.StatusBadRequest, "cancellation reason is required")
	ErrNotCheckedIn        = apperror.New(http.StatusBadRequest, "booking is not checked in")
	ErrInconsistent        = apperror.New(http.StatusInternalServerError, "slot count is inconsistent")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Live reports whether the booking still holds its slots.
func (s Status) Live() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo is the authoritative transition table for tour bookings.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled || next == StatusNoShow
	}
	return false
}

// ReleasesSlots reports whether entering the status returns held capacity to
// the schedule. Completed bookings keep their slots: the occurrence happened.
func (s Status) ReleasesSlots() bool {
	return s == StatusCancelled || s == StatusNoShow
}

type CheckInStatus string

const (
	NotCheckedIn CheckInStatus = "not_checked_in"
	CheckedIn    CheckInStatus = "checked_in"
	CheckedOut   CheckInStatus = "checked_out"
)

// Participant is a member of the booked group. Stored as JSONB at the
// persistence boundary; everything above it works with this struct.
type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type TourBooking struct {
	ID            string
	ScheduleID    string
	TourID        string
	UserID        string
	Participants  []Participant
	TotalCents    int64
	Currency      string
	Status        Status
	CheckInStatus CheckInStatus
	CancelReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NumberOfParticipants is always the length of the participant list.
func (b *TourBooking) NumberOfParticipants() int {
	return len(b.Participants)
}

type Filter struct {
	ScheduleID string
	TourID     string
	UserID     string
	Status     string
	Page       int
	PageSize   int
}

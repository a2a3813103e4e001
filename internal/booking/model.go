package booking

import (
	"net/http"
	"time"

	"github.com/trailstay/booking-backend/internal/daterange"
	"github.com/trailstay/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "reservation not found")
	ErrNotAvailable      = apperror.New(http.StatusConflict, "dates are not available")
	ErrInvalidRange      = apperror.New(http.StatusBadRequest, "check-in must be before check-out")
	ErrStartInPast       = apperror.New(http.StatusBadRequest, "cannot reserve dates in the past")
	ErrGuestCount        = apperror.New(http.StatusBadRequest, "guest count exceeds property capacity")
	ErrMinStay           = apperror.New(http.StatusBadRequest, "stay is shorter than the minimum")
	ErrNotBookable       = apperror.New(http.StatusConflict, "property is not accepting reservations")
	ErrOutsideWindow     = apperror.New(http.StatusConflict, "dates are outside the property's availability window")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidTransition = apperror.New(http.StatusBadRequest, "invalid status transition")
	ErrReasonRequired    = apperror.New(http.StatusBadRequest, "cancellation reason is required")
	ErrNotReschedulable  = apperror.New(http.StatusBadRequest, "reservation can no longer be rescheduled")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Live reports whether the reservation still occupies its dates. Only live
// reservations participate in conflict checks.
func (s Status) Live() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo is the single authoritative transition table:
// pending -> confirmed | cancelled, confirmed -> completed | cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Role string

const (
	RoleGuest  Role = "guest"
	RoleHost   Role = "host"
	RoleSystem Role = "system"
)

// Actor identifies who is driving a transition. Claimed roles are still
// verified against record ownership; RoleSystem is only constructed by
// internal callers such as the expiry sweep.
type Actor struct {
	ID   string
	Role Role
}

// SystemActor drives system-initiated transitions (expiry sweep).
var SystemActor = Actor{ID: "system", Role: RoleSystem}

// Booking is a property reservation over a half-open date range.
type Booking struct {
	ID            string
	PropertyID    string
	GuestID       string
	Range         daterange.DateRange
	Guests        int
	TotalCents    int64
	Status        Status
	PaymentStatus PaymentStatus
	CancelReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Filter struct {
	PropertyID string
	GuestID    string
	Status     string
	Page       int
	PageSize   int
}

// Package blockedrange is the ledger of unavailable date ranges per property.
// Ranges are either host-created manual blocks or derived blocks tagged to a
// reservation so the lifecycle manager can retract exactly what it created.
package blockedrange

import (
	"net/http"
	"time"

	"github.com/trailstay/booking-backend/internal/daterange"
	"github.com/trailstay/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "blocked range not found")
	ErrInvalidRange     = apperror.New(http.StatusBadRequest, "start date must be before end date")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrDatesOccupied    = apperror.New(http.StatusConflict, "dates overlap an existing reservation or block")
)

type BlockedRange struct {
	ID         string
	PropertyID string
	Range      daterange.DateRange
	Reason     string
	// Tag identifies the creator for precise retraction. Derived blocks use
	// BookingTag(bookingID); manual host blocks leave it empty.
	Tag       string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingTag is the ledger tag for the derived block of a property reservation.
func BookingTag(bookingID string) string {
	return "booking:" + bookingID
}

package tour

import (
	"net/http"
	"time"

	"github.com/trailstay/booking-backend/internal/daterange"
	"github.com/trailstay/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "tour not found")
	ErrScheduleNotFound  = apperror.New(http.StatusNotFound, "tour schedule not found")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidGroupSize  = apperror.New(http.StatusBadRequest, "invalid group size bounds")
	ErrInvalidSlots      = apperror.New(http.StatusBadRequest, "available slots must be positive")
	ErrInvalidRange      = apperror.New(http.StatusBadRequest, "schedule start must be before end")
	ErrHasActiveBookings = apperror.New(http.StatusConflict, "tour has active bookings")
)

// Tour is a guided activity offered at fixed-capacity scheduled occurrences.
type Tour struct {
	ID           string
	GuideID      string
	Name         string
	PriceCents   int64
	Currency     string
	MinGroupSize int
	MaxGroupSize int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Schedule is one concrete occurrence of a tour. BookedSlots never exceeds
// AvailableSlots; the booking repository enforces that with a guarded update.
type Schedule struct {
	ID             string
	TourID         string
	Range          daterange.DateRange
	PriceCents     int64
	AvailableSlots int
	BookedSlots    int
	IsAvailable    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FreeSlots returns remaining capacity.
func (s *Schedule) FreeSlots() int {
	return s.AvailableSlots - s.BookedSlots
}

type Filter struct {
	GuideID    string
	ActiveOnly bool
	Page       int
	PageSize   int
}

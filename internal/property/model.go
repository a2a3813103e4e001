package property

import (
	"net/http"
	"time"

	"github.com/trailstay/booking-backend/internal/daterange"
	"github.com/trailstay/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "property not found")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "invalid property status")
	ErrInvalidWindow     = apperror.New(http.StatusBadRequest, "availability window is invalid")
	ErrHasActiveBookings = apperror.New(http.StatusConflict, "property has active reservations")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive:
		return true
	}
	return false
}

// Property is a nightly-rate lodging listing. TwoNightCents, when non-zero,
// is the total price for an exactly-two-night stay.
type Property struct {
	ID            string
	HostID        string
	Name          string
	NightlyCents  int64
	TwoNightCents int64
	MaxGuests     int
	MinStayNights int
	AvailableFrom time.Time
	AvailableTo   time.Time
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Window returns the listing's availability window as a half-open range.
func (p *Property) Window() daterange.DateRange {
	return daterange.DateRange{Start: p.AvailableFrom, End: p.AvailableTo}
}

// Bookable reports whether new reservations may be taken against the listing.
func (p *Property) Bookable() bool {
	return p.Status == StatusActive
}

type Filter struct {
	HostID   string
	Status   string
	Page     int
	PageSize int
}

package property

import (
	"context"
	"time"

	"github.com/trailstay/booking-backend/internal/daterange"
)

type CreateRequest struct {
	HostID        string
	Name          string
	NightlyCents  int64
	TwoNightCents int64
	MaxGuests     int
	MinStayNights int
	AvailableFrom time.Time
	AvailableTo   time.Time
}

type UpdateRequest struct {
	Name          *string
	NightlyCents  *int64
	TwoNightCents *int64
	MaxGuests     *int
	MinStayNights *int
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	Status        *string
}

// ReservationCounter reports how many live reservations reference a property.
// Implemented by the booking repository; kept as a local interface so this
// package does not depend on the booking package.
type ReservationCounter interface {
	CountActiveForProperty(ctx context.Context, propertyID string) (int, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Property, error)
	GetByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, filter Filter) ([]*Property, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, actorID string) (*Property, error)
	Delete(ctx context.Context, id string, actorID string) error
}

type service struct {
	repo         Repository
	reservations ReservationCounter
}

func NewService(repo Repository, reservations ReservationCounter) Service {
	return &service{repo: repo, reservations: reservations}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Property, error) {
	window := daterange.DateRange{Start: req.AvailableFrom.UTC(), End: req.AvailableTo.UTC()}
	if err := window.Validate(); err != nil {
		return nil, ErrInvalidWindow
	}

	p := &Property{
		HostID:        req.HostID,
		Name:          req.Name,
		NightlyCents:  req.NightlyCents,
		TwoNightCents: req.TwoNightCents,
		MaxGuests:     req.MaxGuests,
		MinStayNights: req.MinStayNights,
		AvailableFrom: window.Start,
		AvailableTo:   window.End,
		Status:        StatusPending,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Property, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID string) (*Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.HostID != actorID {
		return nil, ErrPermissionDenied
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.NightlyCents != nil {
		p.NightlyCents = *req.NightlyCents
	}
	if req.TwoNightCents != nil {
		p.TwoNightCents = *req.TwoNightCents
	}
	if req.MaxGuests != nil {
		p.MaxGuests = *req.MaxGuests
	}
	if req.MinStayNights != nil {
		p.MinStayNights = *req.MinStayNights
	}
	if req.AvailableFrom != nil {
		p.AvailableFrom = req.AvailableFrom.UTC()
	}
	if req.AvailableTo != nil {
		p.AvailableTo = req.AvailableTo.UTC()
	}
	if err := p.Window().Validate(); err != nil {
		return nil, ErrInvalidWindow
	}

	if req.Status != nil {
		st := Status(*req.Status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		p.Status = st
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a listing. Deletion is refused while live reservations
// reference it; cancelling those first is the host's responsibility.
func (s *service) Delete(ctx context.Context, id string, actorID string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.HostID != actorID {
		return ErrPermissionDenied
	}

	active, err := s.reservations.CountActiveForProperty(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrHasActiveBookings
	}

	return s.repo.Delete(ctx, id)
}

package tour

import (
	"context"
	"time"

	"github.com/trailstay/booking-backend/internal/daterange"
)

type CreateRequest struct {
	GuideID      string
	Name         string
	PriceCents   int64
	Currency     string
	MinGroupSize int
	MaxGroupSize int
}

type UpdateRequest struct {
	Name         *string
	PriceCents   *int64
	Currency     *string
	MinGroupSize *int
	MaxGroupSize *int
}

type CreateScheduleRequest struct {
	TourID         string
	StartDate      time.Time
	EndDate        time.Time
	PriceCents     int64
	AvailableSlots int
}

// BookingCounter reports how many live bookings reference a tour.
// Implemented by the tourbooking repository; declared here to keep this
// package free of a dependency on it.
type BookingCounter interface {
	CountActiveForTour(ctx context.Context, tourID string) (int, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Tour, error)
	GetByID(ctx context.Context, id string) (*Tour, error)
	List(ctx context.Context, filter Filter) ([]*Tour, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, actorID string) (*Tour, error)
	// Deactivate soft-deletes a tour; refused while live bookings exist.
	Deactivate(ctx context.Context, id string, actorID string) error

	CreateSchedule(ctx context.Context, req CreateScheduleRequest, actorID string) (*Schedule, error)
	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	ListSchedules(ctx context.Context, tourID string) ([]*Schedule, error)
	CloseSchedule(ctx context.Context, id string, actorID string) error
}

type service struct {
	repo     Repository
	bookings BookingCounter
}

func NewService(repo Repository, bookings BookingCounter) Service {
	return &service{repo: repo, bookings: bookings}
}

func validGroupBounds(min, max int) bool {
	return min >= 1 && max >= min
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Tour, error) {
	if !validGroupBounds(req.MinGroupSize, req.MaxGroupSize) {
		return nil, ErrInvalidGroupSize
	}

	t := &Tour{
		GuideID:      req.GuideID,
		Name:         req.Name,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		MinGroupSize: req.MinGroupSize,
		MaxGroupSize: req.MaxGroupSize,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Tour, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Tour, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID string) (*Tour, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.GuideID != actorID {
		return nil, ErrPermissionDenied
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.PriceCents != nil {
		t.PriceCents = *req.PriceCents
	}
	if req.Currency != nil {
		t.Currency = *req.Currency
	}
	if req.MinGroupSize != nil {
		t.MinGroupSize = *req.MinGroupSize
	}
	if req.MaxGroupSize != nil {
		t.MaxGroupSize = *req.MaxGroupSize
	}
	if !validGroupBounds(t.MinGroupSize, t.MaxGroupSize) {
		return nil, ErrInvalidGroupSize
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Deactivate(ctx context.Context, id string, actorID string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.GuideID != actorID {
		return ErrPermissionDenied
	}

	active, err := s.bookings.CountActiveForTour(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrHasActiveBookings
	}

	t.IsActive = false
	return s.repo.Update(ctx, t)
}

func (s *service) CreateSchedule(ctx context.Context, req CreateScheduleRequest, actorID string) (*Schedule, error) {
	t, err := s.repo.GetByID(ctx, req.TourID)
	if err != nil {
		return nil, err
	}
	if t.GuideID != actorID {
		return nil, ErrPermissionDenied
	}
	if req.AvailableSlots < 1 {
		return nil, ErrInvalidSlots
	}

	rng, err := daterange.New(req.StartDate, req.EndDate)
	if err != nil {
		return nil, ErrInvalidRange
	}

	sched := &Schedule{
		TourID:         req.TourID,
		Range:          rng,
		PriceCents:     req.PriceCents,
		AvailableSlots: req.AvailableSlots,
	}
	if err := s.repo.CreateSchedule(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *service) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	return s.repo.GetSchedule(ctx, id)
}

func (s *service) ListSchedules(ctx context.Context, tourID string) ([]*Schedule, error) {
	return s.repo.ListSchedules(ctx, tourID)
}

func (s *service) CloseSchedule(ctx context.Context, id string, actorID string) error {
	sched, err := s.repo.GetSchedule(ctx, id)
	if err != nil {
		return err
	}
	t, err := s.repo.GetByID(ctx, sched.TourID)
	if err != nil {
		return err
	}
	if t.GuideID != actorID {
		return ErrPermissionDenied
	}

	return s.repo.UpdateScheduleAvailability(ctx, id, false)
}

package tourbooking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/trailstay/booking-backend/internal/notify"
	"github.com/trailstay/booking-backend/internal/pricing"
	"github.com/trailstay/booking-backend/internal/tour"
)

type CreateRequest struct {
	ScheduleID   string
	UserID       string
	Participants []Participant
}

type Role string

const (
	RoleParticipant Role = "participant"
	RoleGuide       Role = "guide"
	RoleSystem      Role = "system"
)

type Actor struct {
	ID   string
	Role Role
}

var SystemActor = Actor{ID: "system", Role: RoleSystem}

type Service interface {
	// Create validates group size against the tour, prices the booking,
	// and commits it while claiming slots on the schedule.
	Create(ctx context.Context, req CreateRequest) (*TourBooking, error)

	GetByID(ctx context.Context, id string, actor Actor) (*TourBooking, error)
	List(ctx context.Context, filter Filter) ([]*TourBooking, int, error)

	ChangeStatus(ctx context.Context, id string, actor Actor, newStatus Status, reason string) (*TourBooking, error)

	// CheckIn and CheckOut track attendance on a confirmed booking.
	CheckIn(ctx context.Context, id string, actor Actor) (*TourBooking, error)
	CheckOut(ctx context.Context, id string, actor Actor) (*TourBooking, error)

	ExpirePending(ctx context.Context, before time.Time) (int, error)
}

type service struct {
	repo        Repository
	tourService tour.Service
	events      *notify.Dispatcher
	log         *zap.Logger
	now         func() time.Time
}

func NewService(repo Repository, tourService tour.Service, events *notify.Dispatcher, log *zap.Logger) Service {
	return NewServiceWithClock(repo, tourService, events, log, func() time.Time { return time.Now().UTC() })
}

// NewServiceWithClock injects the time source; tests use a fixed clock.
func NewServiceWithClock(repo Repository, tourService tour.Service, events *notify.Dispatcher, log *zap.Logger, now func() time.Time) Service {
	return &service{
		repo:        repo,
		tourService: tourService,
		events:      events,
		log:         log,
		now:         now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*TourBooking, error) {
	n := len(req.Participants)
	if n < 1 {
		return nil, ErrNoParticipants
	}

	sched, err := s.tourService.GetSchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if !sched.IsAvailable {
		return nil, ErrScheduleUnavailable
	}
	if sched.Range.Start.Before(s.now()) {
		return nil, ErrScheduleInPast
	}

	t, err := s.tourService.GetByID(ctx, sched.TourID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrScheduleUnavailable
	}
	if n < t.MinGroupSize || n > t.MaxGroupSize {
		return nil, ErrGroupSize
	}

	// Advisory capacity read; the repository's guarded increment is the
	// authoritative check under concurrency.
	if sched.FreeSlots() < n {
		return nil, ErrInsufficientSlots
	}

	b := &TourBooking{
		ScheduleID:    req.ScheduleID,
		TourID:        sched.TourID,
		UserID:        req.UserID,
		Participants:  req.Participants,
		TotalCents:    pricing.TourTotal(sched.PriceCents, t.PriceCents, n),
		Currency:      t.Currency,
		Status:        StatusPending,
		CheckInStatus: NotCheckedIn,
	}

	if err := s.repo.CreateWithSlots(ctx, b); err != nil {
		if errors.Is(err, ErrInsufficientSlots) {
			// Distinguish a vanished or closed schedule from real
			// capacity exhaustion.
			if latest, serr := s.tourService.GetSchedule(ctx, req.ScheduleID); serr != nil {
				return nil, serr
			} else if !latest.IsAvailable {
				return nil, ErrScheduleUnavailable
			}
		}
		return nil, err
	}

	s.publish(notify.ReservationCreated, b, req.UserID, "")
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string, actor Actor) (*TourBooking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleSystem && b.UserID != actor.ID {
		t, err := s.tourService.GetByID(ctx, b.TourID)
		if err != nil || t.GuideID != actor.ID {
			return nil, ErrPermissionDenied
		}
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*TourBooking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ChangeStatus(ctx context.Context, id string, actor Actor, newStatus Status, reason string) (*TourBooking, error) {
	if !newStatus.Valid() || newStatus == StatusPending {
		return nil, ErrInvalidTransition
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.tourService.GetByID(ctx, b.TourID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(actor, newStatus, b, t); err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(newStatus) {
		return nil, ErrInvalidTransition
	}
	if newStatus == StatusCancelled && reason == "" {
		return nil, ErrReasonRequired
	}

	from := b.Status
	b.Status = newStatus
	if newStatus == StatusCancelled {
		b.CancelReason = reason
	}

	// The status write is a compare-and-swap against the state validated
	// above; slot release for cancelled/no_show rides in the same
	// transaction.
	if err := s.repo.UpdateStatus(ctx, b, from); err != nil {
		return nil, err
	}

	s.publish(eventKindFor(newStatus), b, actor.ID, reason)
	return b, nil
}

func (s *service) CheckIn(ctx context.Context, id string, actor Actor) (*TourBooking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireGuide(ctx, actor, b.TourID); err != nil {
		return nil, err
	}
	if b.Status != StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	b.CheckInStatus = CheckedIn
	if err := s.repo.UpdateCheckIn(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) CheckOut(ctx context.Context, id string, actor Actor) (*TourBooking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireGuide(ctx, actor, b.TourID); err != nil {
		return nil, err
	}
	if b.CheckInStatus != CheckedIn {
		return nil, ErrNotCheckedIn
	}

	b.CheckInStatus = CheckedOut
	if err := s.repo.UpdateCheckIn(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ExpirePending(ctx context.Context, before time.Time) (int, error) {
	stale, err := s.repo.ListExpiredPending(ctx, before)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, b := range stale {
		_, err := s.ChangeStatus(ctx, b.ID, SystemActor, StatusCancelled, "pending reservation expired")
		if err != nil {
			s.log.Error("expiry sweep cancel failed",
				zap.String("tour_booking_id", b.ID),
				zap.Error(err))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *service) requireGuide(ctx context.Context, actor Actor, tourID string) error {
	if actor.Role == RoleSystem {
		return nil
	}
	t, err := s.tourService.GetByID(ctx, tourID)
	if err != nil {
		return err
	}
	if t.GuideID != actor.ID {
		return ErrPermissionDenied
	}
	return nil
}

func (s *service) publish(kind notify.Kind, b *TourBooking, actorID, reason string) {
	s.events.Publish(notify.Event{
		Kind:          kind,
		Inventory:     notify.InventoryTour,
		ReservationID: b.ID,
		InventoryID:   b.TourID,
		ActorID:       actorID,
		TotalCents:    b.TotalCents,
		Reason:        reason,
	})
}

func authorizeTransition(actor Actor, newStatus Status, b *TourBooking, t *tour.Tour) error {
	switch newStatus {
	case StatusConfirmed, StatusCompleted, StatusNoShow:
		if actor.Role != RoleSystem && actor.ID != t.GuideID {
			return ErrPermissionDenied
		}
	case StatusCancelled:
		if actor.Role == RoleSystem {
			return nil
		}
		if actor.ID != b.UserID && actor.ID != t.GuideID {
			return ErrPermissionDenied
		}
	default:
		return ErrInvalidTransition
	}
	return nil
}

func eventKindFor(status Status) notify.Kind {
	switch status {
	case StatusConfirmed:
		return notify.ReservationConfirmed
	case StatusCompleted:
		return notify.ReservationCompleted
	case StatusCancelled, StatusNoShow:
		return notify.ReservationCancelled
	}
	return notify.ReservationCreated
}

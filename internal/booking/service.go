package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trailstay/booking-backend/internal/daterange"
	"github.com/trailstay/booking-backend/internal/notify"
	"github.com/trailstay/booking-backend/internal/pricing"
	"github.com/trailstay/booking-backend/internal/property"
)

type CreateRequest struct {
	PropertyID string
	GuestID    string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
}

type Service interface {
	// Create validates the request, prices the stay, and commits the
	// reservation at status pending together with its derived blocked range.
	Create(ctx context.Context, req CreateRequest) (*Booking, error)

	GetByID(ctx context.Context, id string, actor Actor) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// ChangeStatus drives the reservation state machine. Cancellation
	// requires a reason; confirm and complete are host-only transitions.
	ChangeStatus(ctx context.Context, id string, actor Actor, newStatus Status, reason string) (*Booking, error)

	// Reschedule moves a live reservation to a new range, re-validating
	// conflicts against everything except the reservation itself.
	Reschedule(ctx context.Context, id string, actor Actor, checkIn, checkOut time.Time) (*Booking, error)

	// CheckAvailability is the read-only probe; it never reserves anything.
	CheckAvailability(ctx context.Context, propertyID string, checkIn, checkOut time.Time, guests int) error

	// ExpirePending system-cancels reservations stuck in pending since
	// before the cutoff. Returns how many were cancelled.
	ExpirePending(ctx context.Context, before time.Time) (int, error)
}

type service struct {
	repo        Repository
	propService property.Service
	events      *notify.Dispatcher
	log         *zap.Logger
	now         func() time.Time
}

func NewService(repo Repository, propService property.Service, events *notify.Dispatcher, log *zap.Logger) Service {
	return NewServiceWithClock(repo, propService, events, log, func() time.Time { return time.Now().UTC() })
}

// NewServiceWithClock injects the time source; tests use a fixed clock.
func NewServiceWithClock(repo Repository, propService property.Service, events *notify.Dispatcher, log *zap.Logger, now func() time.Time) Service {
	return &service{
		repo:        repo,
		propService: propService,
		events:      events,
		log:         log,
		now:         now,
	}
}

// validateStay checks everything about a requested range that does not
// require looking at other reservations.
func (s *service) validateStay(p *property.Property, rng daterange.DateRange, guests int) error {
	if !p.Bookable() {
		return ErrNotBookable
	}
	if !p.Window().Contains(rng) {
		return ErrOutsideWindow
	}
	if guests < 1 || guests > p.MaxGuests {
		return ErrGuestCount
	}
	if rng.Nights() < p.MinStayNights {
		return ErrMinStay
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	rng, err := daterange.New(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, ErrInvalidRange
	}
	if rng.Start.Before(s.now()) {
		return nil, ErrStartInPast
	}

	p, err := s.propService.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := s.validateStay(p, rng, req.Guests); err != nil {
		return nil, err
	}

	b := &Booking{
		PropertyID:    req.PropertyID,
		GuestID:       req.GuestID,
		Range:         rng,
		Guests:        req.Guests,
		TotalCents:    pricing.StayTotal(rng.Nights(), p.NightlyCents, p.TwoNightCents),
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
	}

	// The conflict check and the insert are one atomic operation inside the
	// repository; nothing is committed when this returns an error.
	if err := s.repo.CreateWithBlock(ctx, b); err != nil {
		return nil, err
	}

	s.publish(notify.ReservationCreated, b, req.GuestID, "")
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleSystem && b.GuestID != actor.ID {
		p, err := s.propService.GetByID(ctx, b.PropertyID)
		if err != nil || p.HostID != actor.ID {
			return nil, ErrPermissionDenied
		}
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ChangeStatus(ctx context.Context, id string, actor Actor, newStatus Status, reason string) (*Booking, error) {
	if !newStatus.Valid() || newStatus == StatusPending {
		return nil, ErrInvalidTransition
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.propService.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(actor, newStatus, b, p); err != nil {
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
		if b.PaymentStatus == PaymentPaid {
			b.PaymentStatus = PaymentRefunded
		}
	}

	// The status write is a compare-and-swap against the state validated
	// above; block retraction (cancel, complete) or self-healing re-creation
	// (confirm) happens inside the same transaction.
	if err := s.repo.UpdateStatus(ctx, b, from); err != nil {
		return nil, err
	}

	s.publish(eventKindFor(newStatus), b, actor.ID, reason)
	return b, nil
}

func (s *service) Reschedule(ctx context.Context, id string, actor Actor, checkIn, checkOut time.Time) (*Booking, error) {
	rng, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return nil, ErrInvalidRange
	}
	if rng.Start.Before(s.now()) {
		return nil, ErrStartInPast
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.Live() {
		return nil, ErrNotReschedulable
	}

	p, err := s.propService.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleSystem && actor.ID != b.GuestID && actor.ID != p.HostID {
		return nil, ErrPermissionDenied
	}
	if err := s.validateStay(p, rng, b.Guests); err != nil {
		return nil, err
	}

	b.Range = rng
	b.TotalCents = pricing.StayTotal(rng.Nights(), p.NightlyCents, p.TwoNightCents)

	// Row update and derived-block swap are failure-atomic: either the new
	// dates and new block land together, or nothing changes.
	if err := s.repo.Reschedule(ctx, b); err != nil {
		return nil, err
	}

	s.publish(notify.ReservationRescheduled, b, actor.ID, "")
	return b, nil
}

func (s *service) CheckAvailability(ctx context.Context, propertyID string, checkIn, checkOut time.Time, guests int) error {
	rng, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return ErrInvalidRange
	}
	if rng.Start.Before(s.now()) {
		return ErrStartInPast
	}

	p, err := s.propService.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if err := s.validateStay(p, rng, guests); err != nil {
		return err
	}

	conflict, err := s.repo.HasConflict(ctx, propertyID, rng, "")
	if err != nil {
		return err
	}
	if conflict {
		return ErrNotAvailable
	}
	return nil
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
			// Keep sweeping: one stuck row must not stall the rest.
			s.log.Error("expiry sweep cancel failed",
				zap.String("booking_id", b.ID),
				zap.Error(err))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *service) publish(kind notify.Kind, b *Booking, actorID, reason string) {
	s.events.Publish(notify.Event{
		Kind:          kind,
		Inventory:     notify.InventoryProperty,
		ReservationID: b.ID,
		InventoryID:   b.PropertyID,
		ActorID:       actorID,
		TotalCents:    b.TotalCents,
		Reason:        reason,
	})
}

// authorizeTransition enforces who may drive each transition: confirm and
// complete belong to the host, cancel to the guest, the host, or the system.
func authorizeTransition(actor Actor, newStatus Status, b *Booking, p *property.Property) error {
	switch newStatus {
	case StatusConfirmed, StatusCompleted:
		if actor.ID != p.HostID {
			return ErrPermissionDenied
		}
	case StatusCancelled:
		if actor.Role == RoleSystem {
			return nil
		}
		if actor.ID != b.GuestID && actor.ID != p.HostID {
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
	case StatusCancelled:
		return notify.ReservationCancelled
	}
	return notify.ReservationCreated
}

package blockedrange

import (
	"context"
	"time"

	"github.com/trailstay/booking-backend/internal/daterange"
	"github.com/trailstay/booking-backend/internal/property"
)

type CreateRequest struct {
	PropertyID string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

// Service handles host-initiated manual blocks. Derived blocks that mirror
// reservations are written by the booking repository inside the reservation
// transaction, never through here.
type Service interface {
	Create(ctx context.Context, req CreateRequest, actorID string) (*BlockedRange, error)
	Remove(ctx context.Context, id string, propertyID string, actorID string) error
	ListActive(ctx context.Context, propertyID string, window daterange.DateRange) ([]*BlockedRange, error)
}

type service struct {
	repo        Repository
	propService property.Service
}

func NewService(repo Repository, propService property.Service) Service {
	return &service{repo: repo, propService: propService}
}

func (s *service) Create(ctx context.Context, req CreateRequest, actorID string) (*BlockedRange, error) {
	rng, err := daterange.New(req.StartDate, req.EndDate)
	if err != nil {
		return nil, ErrInvalidRange
	}

	p, err := s.propService.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if p.HostID != actorID {
		return nil, ErrPermissionDenied
	}

	// A manual block may not land on dates a reservation already holds; the
	// host has to cancel the reservation first.
	occupied, err := s.repo.HasActiveOverlap(ctx, req.PropertyID, rng, "")
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, ErrDatesOccupied
	}

	br := &BlockedRange{
		PropertyID: req.PropertyID,
		Range:      rng,
		Reason:     req.Reason,
	}
	if err := s.repo.Create(ctx, br); err != nil {
		return nil, err
	}
	return br, nil
}

func (s *service) Remove(ctx context.Context, id string, propertyID string, actorID string) error {
	p, err := s.propService.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if p.HostID != actorID {
		return ErrPermissionDenied
	}

	return s.repo.Deactivate(ctx, id, propertyID)
}

func (s *service) ListActive(ctx context.Context, propertyID string, window daterange.DateRange) ([]*BlockedRange, error) {
	if _, err := s.propService.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.repo.ActiveForProperty(ctx, propertyID, window)
}

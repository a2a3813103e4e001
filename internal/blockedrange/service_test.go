package blockedrange

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailstay/booking-backend/internal/daterange"
	"github.com/trailstay/booking-backend/internal/property"
)

type fakeRepository struct {
	blocks []*BlockedRange
}

func (r *fakeRepository) Create(_ context.Context, br *BlockedRange) error {
	br.ID = uuid.NewString()
	br.IsActive = true
	copied := *br
	r.blocks = append(r.blocks, &copied)
	return nil
}

func (r *fakeRepository) Deactivate(_ context.Context, id string, propertyID string) error {
	for _, br := range r.blocks {
		if br.ID == id && br.PropertyID == propertyID && br.IsActive {
			br.IsActive = false
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeRepository) ActiveForProperty(_ context.Context, propertyID string, window daterange.DateRange) ([]*BlockedRange, error) {
	var out []*BlockedRange
	for _, br := range r.blocks {
		if br.PropertyID != propertyID || !br.IsActive {
			continue
		}
		if !window.IsZero() && !br.Range.Overlaps(window) {
			continue
		}
		copied := *br
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRepository) HasActiveOverlap(_ context.Context, propertyID string, rng daterange.DateRange, excludeTag string) (bool, error) {
	for _, br := range r.blocks {
		if br.PropertyID != propertyID || !br.IsActive {
			continue
		}
		if excludeTag != "" && br.Tag == excludeTag {
			continue
		}
		if br.Range.Overlaps(rng) {
			return true, nil
		}
	}
	return false, nil
}

type fakePropertyService struct {
	props map[string]*property.Property
}

func (s *fakePropertyService) Create(context.Context, property.CreateRequest) (*property.Property, error) {
	panic("not used")
}

func (s *fakePropertyService) GetByID(_ context.Context, id string) (*property.Property, error) {
	p, ok := s.props[id]
	if !ok {
		return nil, property.ErrNotFound
	}
	return p, nil
}

func (s *fakePropertyService) List(context.Context, property.Filter) ([]*property.Property, int, error) {
	panic("not used")
}

func (s *fakePropertyService) Update(context.Context, string, property.UpdateRequest, string) (*property.Property, error) {
	panic("not used")
}

func (s *fakePropertyService) Delete(context.Context, string, string) error {
	panic("not used")
}

const (
	hostID = "3d1b1a9e-0000-4000-8000-000000000001"
	propID = "3d1b1a9e-0000-4000-8000-000000000010"
)

func newTestService() (Service, *fakeRepository) {
	repo := &fakeRepository{}
	props := &fakePropertyService{props: map[string]*property.Property{
		propID: {ID: propID, HostID: hostID, Status: property.StatusActive},
	}}
	return NewService(repo, props), repo
}

func day(n int) time.Time {
	return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestCreateManualBlock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req := CreateRequest{PropertyID: propID, StartDate: day(1), EndDate: day(4), Reason: "maintenance"}

	_, err := svc.Create(ctx, req, "someone-else")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	br, err := svc.Create(ctx, req, hostID)
	require.NoError(t, err)
	assert.True(t, br.IsActive)
	assert.Empty(t, br.Tag)
}

func TestCreateRefusesOccupiedDates(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	// A derived block on the dates stands for a live reservation.
	rng, _ := daterange.New(day(1), day(4))
	repo.blocks = append(repo.blocks, &BlockedRange{
		ID:         uuid.NewString(),
		PropertyID: propID,
		Range:      rng,
		Tag:        BookingTag(uuid.NewString()),
		IsActive:   true,
	})

	_, err := svc.Create(ctx, CreateRequest{PropertyID: propID, StartDate: day(2), EndDate: day(5)}, hostID)
	assert.ErrorIs(t, err, ErrDatesOccupied)

	// Back-to-back with the reservation is fine.
	_, err = svc.Create(ctx, CreateRequest{PropertyID: propID, StartDate: day(4), EndDate: day(6)}, hostID)
	assert.NoError(t, err)
}

func TestRemoveBlock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	br, err := svc.Create(ctx, CreateRequest{PropertyID: propID, StartDate: day(1), EndDate: day(3)}, hostID)
	require.NoError(t, err)

	err = svc.Remove(ctx, br.ID, propID, "someone-else")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.Remove(ctx, br.ID, propID, hostID))

	active, err := svc.ListActive(ctx, propID, daterange.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, active)
}

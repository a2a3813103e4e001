package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trailstay/booking-backend/internal/blockedrange"
	"github.com/trailstay/booking-backend/internal/daterange"
	"github.com/trailstay/booking-backend/internal/notify"
	"github.com/trailstay/booking-backend/internal/property"
)

// fakeRepository is an in-memory Repository. The mutex makes every operation
// atomic the way the serializable transactions do in the real one, which is
// what the concurrent tests exercise.
type fakeRepository struct {
	mu       sync.Mutex
	bookings map[string]*Booking
	blocks   []*blockedrange.BlockedRange
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{bookings: make(map[string]*Booking)}
}

func (r *fakeRepository) hasConflictLocked(propertyID string, rng daterange.DateRange, excludeBookingID string) bool {
	for _, b := range r.bookings {
		if b.PropertyID != propertyID || !b.Status.Live() || b.ID == excludeBookingID {
			continue
		}
		if b.Range.Overlaps(rng) {
			return true
		}
	}
	excludeTag := ""
	if excludeBookingID != "" {
		excludeTag = blockedrange.BookingTag(excludeBookingID)
	}
	for _, br := range r.blocks {
		if br.PropertyID != propertyID || !br.IsActive {
			continue
		}
		if excludeTag != "" && br.Tag == excludeTag {
			continue
		}
		if br.Range.Overlaps(rng) {
			return true
		}
	}
	return false
}

func (r *fakeRepository) addManualBlock(propertyID string, rng daterange.DateRange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, &blockedrange.BlockedRange{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		Range:      rng,
		IsActive:   true,
	})
}

func (r *fakeRepository) derivedBlockActive(bookingID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, br := range r.blocks {
		if br.Tag == blockedrange.BookingTag(bookingID) && br.IsActive {
			return true
		}
	}
	return false
}

func (r *fakeRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepository) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if filter.PropertyID != "" && b.PropertyID != filter.PropertyID {
			continue
		}
		if filter.GuestID != "" && b.GuestID != filter.GuestID {
			continue
		}
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeRepository) CreateWithBlock(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasConflictLocked(b.PropertyID, b.Range, "") {
		return ErrNotAvailable
	}
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	copied := *b
	r.bookings[b.ID] = &copied
	r.blocks = append(r.blocks, &blockedrange.BlockedRange{
		ID:         uuid.NewString(),
		PropertyID: b.PropertyID,
		Range:      b.Range,
		Tag:        blockedrange.BookingTag(b.ID),
		IsActive:   true,
	})
	return nil
}

func (r *fakeRepository) UpdateStatus(_ context.Context, b *Booking, from Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != from {
		return ErrInvalidTransition
	}
	stored.Status = b.Status
	stored.PaymentStatus = b.PaymentStatus
	stored.CancelReason = b.CancelReason
	switch b.Status {
	case StatusCancelled, StatusCompleted:
		for _, br := range r.blocks {
			if br.Tag == blockedrange.BookingTag(b.ID) {
				br.IsActive = false
			}
		}
	case StatusConfirmed:
		active := false
		for _, br := range r.blocks {
			if br.Tag == blockedrange.BookingTag(b.ID) && br.IsActive {
				active = true
			}
		}
		if !active {
			r.blocks = append(r.blocks, &blockedrange.BlockedRange{
				ID:         uuid.NewString(),
				PropertyID: stored.PropertyID,
				Range:      stored.Range,
				Tag:        blockedrange.BookingTag(b.ID),
				IsActive:   true,
			})
		}
	}
	return nil
}

func (r *fakeRepository) Reschedule(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if r.hasConflictLocked(b.PropertyID, b.Range, b.ID) {
		return ErrNotAvailable
	}
	stored.Range = b.Range
	stored.TotalCents = b.TotalCents
	for _, br := range r.blocks {
		if br.Tag == blockedrange.BookingTag(b.ID) {
			br.IsActive = false
		}
	}
	r.blocks = append(r.blocks, &blockedrange.BlockedRange{
		ID:         uuid.NewString(),
		PropertyID: b.PropertyID,
		Range:      b.Range,
		Tag:        blockedrange.BookingTag(b.ID),
		IsActive:   true,
	})
	return nil
}

func (r *fakeRepository) HasConflict(_ context.Context, propertyID string, rng daterange.DateRange, excludeBookingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasConflictLocked(propertyID, rng, excludeBookingID), nil
}

func (r *fakeRepository) ListExpiredPending(_ context.Context, before time.Time) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if b.Status == StatusPending && b.CreatedAt.Before(before) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepository) CountActiveForProperty(_ context.Context, propertyID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.bookings {
		if b.PropertyID == propertyID && b.Status.Live() {
			n++
		}
	}
	return n, nil
}

// gatedRepository wraps the fake so a test can hold every racing goroutine
// at the read until all of them have seen the same stale row.
type gatedRepository struct {
	*fakeRepository
	gate func()
}

func (r *gatedRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	b, err := r.fakeRepository.GetByID(ctx, id)
	if r.gate != nil {
		r.gate()
	}
	return b, err
}

// fakePropertyService serves fixed listings.
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

var testNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	testHostID  = "6f1b1a9e-0000-4000-8000-000000000001"
	testGuestID = "6f1b1a9e-0000-4000-8000-000000000002"
	otherGuest  = "6f1b1a9e-0000-4000-8000-000000000003"
	testPropID  = "6f1b1a9e-0000-4000-8000-000000000010"
)

func testProperty() *property.Property {
	return &property.Property{
		ID:            testPropID,
		HostID:        testHostID,
		Name:          "Cedar Cabin",
		NightlyCents:  10000,
		TwoNightCents: 18000,
		MaxGuests:     4,
		MinStayNights: 1,
		AvailableFrom: testNow,
		AvailableTo:   testNow.AddDate(1, 0, 0),
		Status:        property.StatusActive,
	}
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	props := &fakePropertyService{props: map[string]*property.Property{testPropID: testProperty()}}
	events := notify.NewDispatcher(16, zap.NewNop())
	t.Cleanup(events.Close)
	svc := NewServiceWithClock(repo, props, events, zap.NewNop(), func() time.Time { return testNow })
	return svc, repo
}

func day(n int) time.Time {
	return testNow.AddDate(0, 0, n)
}

func createReq(checkIn, checkOut time.Time) CreateRequest {
	return CreateRequest{
		PropertyID: testPropID,
		GuestID:    testGuestID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq(day(10), day(13)))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createReq(day(12), day(14)))
	assert.ErrorIs(t, err, ErrNotAvailable)

	// Half-open ranges: same-day turnover is not a conflict.
	_, err = svc.Create(ctx, createReq(day(13), day(15)))
	assert.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"inverted range", createReq(day(5), day(3)), ErrInvalidRange},
		{"start in past", createReq(day(-2), day(2)), ErrStartInPast},
		{"outside window", createReq(day(360), day(370)), ErrOutsideWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	tooMany := createReq(day(1), day(3))
	tooMany.Guests = 5
	_, err := svc.Create(ctx, tooMany)
	assert.ErrorIs(t, err, ErrGuestCount)
}

func TestCreateEnforcesMinStay(t *testing.T) {
	repo := newFakeRepository()
	p := testProperty()
	p.MinStayNights = 3
	props := &fakePropertyService{props: map[string]*property.Property{testPropID: p}}
	events := notify.NewDispatcher(16, zap.NewNop())
	t.Cleanup(events.Close)
	svc := NewServiceWithClock(repo, props, events, zap.NewNop(), func() time.Time { return testNow })

	_, err := svc.Create(context.Background(), createReq(day(1), day(3)))
	assert.ErrorIs(t, err, ErrMinStay)

	_, err = svc.Create(context.Background(), createReq(day(1), day(4)))
	assert.NoError(t, err)
}

func TestCreateTwoNightSpecialPrice(t *testing.T) {
	svc, _ := newTestService(t)

	b, err := svc.Create(context.Background(), createReq(day(1), day(3)))
	require.NoError(t, err)
	// Two-night special is the total, not a per-night rate.
	assert.Equal(t, int64(18000), b.TotalCents)

	b, err = svc.Create(context.Background(), createReq(day(5), day(8)))
	require.NoError(t, err)
	assert.Equal(t, int64(30000), b.TotalCents)
}

func TestConcurrentCreatesOnlyOneWins(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, createReq(day(20), day(23)))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrNotAvailable)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestChangeStatusTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	host := Actor{ID: testHostID, Role: RoleHost}
	guest := Actor{ID: testGuestID, Role: RoleGuest}

	b, err := svc.Create(ctx, createReq(day(1), day(3)))
	require.NoError(t, err)

	// Guest may not confirm.
	_, err = svc.ChangeStatus(ctx, b.ID, guest, StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	b, err = svc.ChangeStatus(ctx, b.ID, host, StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)

	// Cancellation needs a reason.
	_, err = svc.ChangeStatus(ctx, b.ID, guest, StatusCancelled, "")
	assert.ErrorIs(t, err, ErrReasonRequired)

	b, err = svc.ChangeStatus(ctx, b.ID, guest, StatusCancelled, "change of plans")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, "change of plans", b.CancelReason)

	// Cancelled is terminal.
	_, err = svc.ChangeStatus(ctx, b.ID, host, StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStrangerCannotCancel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, createReq(day(1), day(3)))
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, b.ID, Actor{ID: otherGuest, Role: RoleGuest}, StatusCancelled, "not mine")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCancelFreesDates(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	guest := Actor{ID: testGuestID, Role: RoleGuest}

	b, err := svc.Create(ctx, createReq(day(10), day(13)))
	require.NoError(t, err)
	assert.True(t, repo.derivedBlockActive(b.ID))

	_, err = svc.Create(ctx, createReq(day(10), day(13)))
	require.ErrorIs(t, err, ErrNotAvailable)

	_, err = svc.ChangeStatus(ctx, b.ID, guest, StatusCancelled, "plans changed")
	require.NoError(t, err)
	assert.False(t, repo.derivedBlockActive(b.ID))

	_, err = svc.Create(ctx, createReq(day(10), day(13)))
	assert.NoError(t, err)
}

func TestCompleteFreesRemainingDates(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	host := Actor{ID: testHostID, Role: RoleHost}

	b, err := svc.Create(ctx, createReq(day(10), day(13)))
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, b.ID, host, StatusConfirmed, "")
	require.NoError(t, err)

	// Completing the stay retires the derived block, so the dates no longer
	// conflict with anything.
	_, err = svc.ChangeStatus(ctx, b.ID, host, StatusCompleted, "")
	require.NoError(t, err)
	assert.False(t, repo.derivedBlockActive(b.ID))

	_, err = svc.Create(ctx, createReq(day(10), day(13)))
	assert.NoError(t, err)
}

func TestConfirmRestoresMissingBlock(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	host := Actor{ID: testHostID, Role: RoleHost}

	b, err := svc.Create(ctx, createReq(day(10), day(13)))
	require.NoError(t, err)

	// Simulate ledger drift: the derived block vanished out from under the
	// reservation.
	repo.mu.Lock()
	for _, br := range repo.blocks {
		if br.Tag == blockedrange.BookingTag(b.ID) {
			br.IsActive = false
		}
	}
	repo.mu.Unlock()

	_, err = svc.ChangeStatus(ctx, b.ID, host, StatusConfirmed, "")
	require.NoError(t, err)
	assert.True(t, repo.derivedBlockActive(b.ID))

	// The restored block covers the reservation's dates again.
	_, err = svc.Create(ctx, createReq(day(10), day(13)))
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestConcurrentCancelConfirmOneWins(t *testing.T) {
	repo := newFakeRepository()
	gated := &gatedRepository{fakeRepository: repo}
	props := &fakePropertyService{props: map[string]*property.Property{testPropID: testProperty()}}
	events := notify.NewDispatcher(16, zap.NewNop())
	t.Cleanup(events.Close)
	svc := NewServiceWithClock(gated, props, events, zap.NewNop(), func() time.Time { return testNow })
	ctx := context.Background()

	b, err := svc.Create(ctx, createReq(day(10), day(13)))
	require.NoError(t, err)

	// Both transitions read the same pending row before either writes.
	var barrier sync.WaitGroup
	barrier.Add(2)
	gated.gate = func() {
		barrier.Done()
		barrier.Wait()
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.ChangeStatus(ctx, b.ID, Actor{ID: testGuestID, Role: RoleGuest}, StatusCancelled, "change of plans")
		results <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.ChangeStatus(ctx, b.ID, Actor{ID: testHostID, Role: RoleHost}, StatusConfirmed, "")
		results <- err
	}()
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, won)

	// The block ledger reflects the winner only: no resurrected block on a
	// cancelled reservation, no missing block on a confirmed one.
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	if got.Status == StatusCancelled {
		assert.False(t, repo.derivedBlockActive(b.ID))
	} else {
		assert.Equal(t, StatusConfirmed, got.Status)
		assert.True(t, repo.derivedBlockActive(b.ID))
	}
}

// assertBlockSymmetry checks that every live reservation has exactly one
// active derived block with an identical range.
func assertBlockSymmetry(t *testing.T, repo *fakeRepository) {
	t.Helper()
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, b := range repo.bookings {
		if !b.Status.Live() {
			continue
		}
		active := 0
		for _, br := range repo.blocks {
			if br.Tag == blockedrange.BookingTag(b.ID) && br.IsActive {
				active++
				assert.True(t, br.Range.Start.Equal(b.Range.Start))
				assert.True(t, br.Range.End.Equal(b.Range.End))
			}
		}
		assert.Equal(t, 1, active)
	}
}

func TestConcurrentRescheduleAndCreateOneWins(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	guest := Actor{ID: testGuestID, Role: RoleGuest}

	b, err := svc.Create(ctx, createReq(day(30), day(34)))
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, b.ID, Actor{ID: testHostID, Role: RoleHost}, StatusConfirmed, "")
	require.NoError(t, err)

	// The reschedule target and the new reservation overlap, so at most one
	// of them can land.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Reschedule(ctx, b.ID, guest, day(40), day(44))
		results <- err
	}()
	go func() {
		defer wg.Done()
		req := createReq(day(40), day(42))
		req.GuestID = otherGuest
		_, err := svc.Create(ctx, req)
		results <- err
	}()
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrNotAvailable)
		}
	}
	assert.Equal(t, 1, won)

	got, err := svc.GetByID(ctx, b.ID, guest)
	require.NoError(t, err)
	if got.Range.Start.Equal(day(40)) {
		// Reschedule won; the competing create must not have landed.
		list, _, err := svc.List(ctx, Filter{PropertyID: testPropID, GuestID: otherGuest})
		require.NoError(t, err)
		assert.Empty(t, list)
	} else {
		assert.True(t, got.Range.Start.Equal(day(30)))
	}
	assertBlockSymmetry(t, repo)
}

func TestReschedule(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	guest := Actor{ID: testGuestID, Role: RoleGuest}

	b, err := svc.Create(ctx, createReq(day(10), day(13)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, createReq(day(20), day(22)))
	require.NoError(t, err)

	// Moving onto another reservation's dates fails and leaves the original
	// dates in place.
	_, err = svc.Reschedule(ctx, b.ID, guest, day(21), day(23))
	assert.ErrorIs(t, err, ErrNotAvailable)

	got, err := svc.GetByID(ctx, b.ID, guest)
	require.NoError(t, err)
	assert.Equal(t, day(10), got.Range.Start)

	// A shift that overlaps only the reservation's own dates is allowed.
	moved, err := svc.Reschedule(ctx, b.ID, guest, day(11), day(14))
	require.NoError(t, err)
	assert.Equal(t, day(11), moved.Range.Start)
	assert.True(t, repo.derivedBlockActive(b.ID))

	// The vacated night is bookable again.
	_, err = svc.Create(ctx, createReq(day(10), day(11)))
	assert.NoError(t, err)
}

func TestRescheduleRepricesStay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	guest := Actor{ID: testGuestID, Role: RoleGuest}

	b, err := svc.Create(ctx, createReq(day(1), day(4)))
	require.NoError(t, err)
	require.Equal(t, int64(30000), b.TotalCents)

	moved, err := svc.Reschedule(ctx, b.ID, guest, day(1), day(3))
	require.NoError(t, err)
	assert.Equal(t, int64(18000), moved.TotalCents)
}

func TestRescheduleCancelledFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	guest := Actor{ID: testGuestID, Role: RoleGuest}

	b, err := svc.Create(ctx, createReq(day(1), day(3)))
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, b.ID, guest, StatusCancelled, "plans changed")
	require.NoError(t, err)

	_, err = svc.Reschedule(ctx, b.ID, guest, day(5), day(7))
	assert.ErrorIs(t, err, ErrNotReschedulable)
}

func TestCheckAvailability(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	err := svc.CheckAvailability(ctx, testPropID, day(10), day(12), 2)
	assert.NoError(t, err)

	// A manual host block makes the dates unavailable.
	rng, _ := daterange.New(day(10), day(12))
	repo.addManualBlock(testPropID, rng)

	err = svc.CheckAvailability(ctx, testPropID, day(10), day(12), 2)
	assert.ErrorIs(t, err, ErrNotAvailable)

	err = svc.CheckAvailability(ctx, testPropID, day(12), day(14), 2)
	assert.NoError(t, err)
}

func TestExpirePending(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	b1, err := svc.Create(ctx, createReq(day(1), day(3)))
	require.NoError(t, err)
	b2, err := svc.Create(ctx, createReq(day(5), day(7)))
	require.NoError(t, err)
	b3, err := svc.Create(ctx, createReq(day(10), day(12)))
	require.NoError(t, err)

	// Confirmed reservations never expire.
	_, err = svc.ChangeStatus(ctx, b3.ID, Actor{ID: testHostID, Role: RoleHost}, StatusConfirmed, "")
	require.NoError(t, err)

	// Age the first two past the cutoff.
	repo.mu.Lock()
	repo.bookings[b1.ID].CreatedAt = testNow.Add(-2 * time.Hour)
	repo.bookings[b2.ID].CreatedAt = testNow.Add(-2 * time.Hour)
	repo.mu.Unlock()

	n, err := svc.ExpirePending(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := svc.GetByID(ctx, b1.ID, SystemActor)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, "pending reservation expired", got.CancelReason)

	got, err = svc.GetByID(ctx, b3.ID, SystemActor)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
}

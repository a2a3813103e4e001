package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeExpirer struct {
	calls  int
	cutoff time.Time
	err    error
}

func (f *fakeExpirer) ExpirePending(_ context.Context, before time.Time) (int, error) {
	f.calls++
	f.cutoff = before
	return 1, f.err
}

func TestRunSweepsAllExpirers(t *testing.T) {
	stays := &fakeExpirer{}
	tours := &fakeExpirer{}
	s := NewSweeper(30*time.Minute, zap.NewNop(), stays, tours)

	s.Run()

	assert.Equal(t, 1, stays.calls)
	assert.Equal(t, 1, tours.calls)

	// Cutoff trails now by the pending TTL.
	want := time.Now().UTC().Add(-30 * time.Minute)
	assert.WithinDuration(t, want, stays.cutoff, 5*time.Second)
}

func TestRunContinuesPastFailure(t *testing.T) {
	failing := &fakeExpirer{err: errors.New("db down")}
	healthy := &fakeExpirer{}
	s := NewSweeper(time.Hour, zap.NewNop(), failing, healthy)

	s.Run()

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls)
}

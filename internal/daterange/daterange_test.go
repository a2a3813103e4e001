package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) DateRange {
	t.Helper()
	r, err := New(start, end)
	require.NoError(t, err)
	return r
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := New(date(2025, 6, 5), date(2025, 6, 1))
	assert.Error(t, err)

	_, err = New(date(2025, 6, 5), date(2025, 6, 5))
	assert.Error(t, err, "zero-length range is invalid")
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b DateRange
		want bool
	}{
		{
			name: "back-to-back ranges do not conflict",
			a:    mustRange(t, date(2025, 6, 1), date(2025, 6, 5)),
			b:    mustRange(t, date(2025, 6, 5), date(2025, 6, 8)),
			want: false,
		},
		{
			name: "one-day intersection conflicts",
			a:    mustRange(t, date(2025, 6, 1), date(2025, 6, 5)),
			b:    mustRange(t, date(2025, 6, 4), date(2025, 6, 6)),
			want: true,
		},
		{
			name: "containment conflicts",
			a:    mustRange(t, date(2025, 6, 1), date(2025, 6, 10)),
			b:    mustRange(t, date(2025, 6, 3), date(2025, 6, 4)),
			want: true,
		},
		{
			name: "identical ranges conflict",
			a:    mustRange(t, date(2025, 6, 1), date(2025, 6, 5)),
			b:    mustRange(t, date(2025, 6, 1), date(2025, 6, 5)),
			want: true,
		},
		{
			name: "disjoint ranges do not conflict",
			a:    mustRange(t, date(2025, 6, 1), date(2025, 6, 3)),
			b:    mustRange(t, date(2025, 6, 10), date(2025, 6, 12)),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestNights(t *testing.T) {
	r := mustRange(t, date(2025, 6, 1), date(2025, 6, 3))
	assert.Equal(t, 2, r.Nights())

	// Partial days round up.
	r = mustRange(t, date(2025, 6, 1).Add(14*time.Hour), date(2025, 6, 3).Add(10*time.Hour))
	assert.Equal(t, 2, r.Nights())

	r = mustRange(t, date(2025, 6, 1), date(2025, 6, 1).Add(3*time.Hour))
	assert.Equal(t, 1, r.Nights())
}

func TestDaysIsLazyFiniteAndRestartable(t *testing.T) {
	r := mustRange(t, date(2025, 6, 1), date(2025, 6, 4))

	var got []time.Time
	for d := range r.Days() {
		got = append(got, d)
	}
	require.Len(t, got, 3)
	assert.Equal(t, date(2025, 6, 1), got[0])
	assert.Equal(t, date(2025, 6, 3), got[2])

	// The sequence restarts from the beginning on a second iteration.
	var again []time.Time
	for d := range r.Days() {
		again = append(again, d)
		break
	}
	require.Len(t, again, 1)
	assert.Equal(t, date(2025, 6, 1), again[0])
}

func TestContainsDate(t *testing.T) {
	r := mustRange(t, date(2025, 6, 1), date(2025, 6, 5))
	assert.True(t, r.ContainsDate(date(2025, 6, 1)))
	assert.True(t, r.ContainsDate(date(2025, 6, 4)))
	assert.False(t, r.ContainsDate(date(2025, 6, 5)), "end is exclusive")
}

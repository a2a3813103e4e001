package daterange

import (
	"fmt"
	"iter"
	"time"
)

// DateRange is a half-open interval [Start, End): End is exclusive, so two
// ranges sharing a boundary (same-day checkout and checkin) do not overlap.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// New normalizes both endpoints to UTC and validates the range.
func New(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: start.UTC(), End: end.UTC()}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("daterange: start and end are required")
	}
	if !r.End.After(r.Start) {
		return fmt.Errorf("daterange: end must be after start")
	}
	return nil
}

func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Overlaps reports whether the two half-open ranges intersect.
// This is the only comparison conflict checks are allowed to use; it is O(1)
// regardless of range length.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether other lies entirely within r.
func (r DateRange) Contains(other DateRange) bool {
	return !r.Start.After(other.Start) && !r.End.Before(other.End)
}

// ContainsDate reports whether t falls inside the half-open range.
func (r DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return !t.Before(r.Start) && t.Before(r.End)
}

// Nights returns the number of billable nights, rounding partial days up.
func (r DateRange) Nights() int {
	d := r.End.Sub(r.Start)
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}

// Days returns a lazy, restartable sequence of the calendar days covered by
// the range, starting at midnight UTC of the start day. Intended for calendar
// display only, never for conflict testing.
func (r DateRange) Days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		day := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
		for day.Before(r.End) {
			if !yield(day) {
				return
			}
			day = day.AddDate(0, 0, 1)
		}
	}
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

package scheduling

import (
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

// Interval is a half-open [start, end) time-of-day range pinned to one
// calendar date. An overnight interval has end <= start and extends past
// midnight for comparison purposes; without the flag, end <= start is a
// validation error.
type Interval struct {
	Start     TimeOfDay
	End       TimeOfDay
	Overnight bool
}

// NewInterval builds a validated interval from HH:mm strings.
func NewInterval(start, end string, overnight bool) (Interval, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Interval{}, err
	}
	if e <= s && !overnight {
		return Interval{}, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time unless the shift is flagged overnight")
	}
	// The flag only matters when the interval actually wraps midnight.
	return Interval{Start: s, End: e, Overnight: overnight && e <= s}, nil
}

// bounds returns the interval as minute offsets from the owning date's
// midnight, extending overnight intervals past minute 1440.
func (i Interval) bounds() (int, int) {
	s := int(i.Start)
	e := int(i.End)
	if i.Overnight && e <= s {
		e += minutesPerDay
	}
	return s, e
}

// Duration returns the interval length in minutes.
func (i Interval) Duration() int {
	s, e := i.bounds()
	return e - s
}

// Overlaps reports whether two intervals on the same calendar date conflict.
// The ranges are half-open, so touching boundaries do not overlap.
func Overlaps(a, b Interval) bool {
	as, ae := a.bounds()
	bs, be := b.bounds()
	return as < be && bs < ae
}

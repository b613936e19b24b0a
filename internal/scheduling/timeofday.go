package scheduling

import (
	"fmt"
	"regexp"
	"time"

	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

const minutesPerDay = 1440

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// TimeOfDay is a canonical UTC time of day in minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a strict HH:mm string (00:00-23:59).
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	if !timeOfDayPattern.MatchString(raw) {
		return 0, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid time %q, expected HH:mm", raw))
	}
	h := int(raw[0]-'0')*10 + int(raw[1]-'0')
	m := int(raw[3]-'0')*10 + int(raw[4]-'0')
	return TimeOfDay(h*60 + m), nil
}

// String renders the time back to HH:mm.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	day, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return day, nil
}

// ToCanonical converts a wall-clock HH:mm in the given IANA timezone on the
// given date to its canonical UTC HH:mm. The returned day offset (-1, 0 or +1)
// reports whether the conversion crossed a calendar-day boundary; it is never
// folded into the time string.
func ToCanonical(localTime, date, timezone string) (string, int, error) {
	t, err := ParseTimeOfDay(localTime)
	if err != nil {
		return "", 0, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return "", 0, err
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "", 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown timezone %q", timezone))
	}

	local := time.Date(day.Year(), day.Month(), day.Day(), int(t)/60, int(t)%60, 0, 0, loc)
	utc := local.UTC()

	utcDay := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	offset := int(utcDay.Sub(day).Hours() / 24)

	return utc.Format("15:04"), offset, nil
}

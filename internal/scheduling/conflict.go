package scheduling

import (
	"fmt"
	"sort"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

// Candidate is a shift being validated against an employee's existing day.
type Candidate struct {
	EmployeeID string
	ShiftDate  string
	Window     Interval
}

// ScanOptions tunes a conflict scan.
type ScanOptions struct {
	// ExcludeShiftID removes the shift being edited from the comparison set
	// so an update never conflicts with itself.
	ExcludeShiftID string
	MaxSuggestions int
}

// FindConflicts compares the candidate against the employee's existing shifts
// on the same date and returns the full set of overlaps plus suggested
// alternative windows, or nil when the day is clear. It reads, never writes.
func FindConflicts(candidate Candidate, existing []models.Shift, opts ScanOptions) (*models.ConflictInfo, error) {
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = 3
	}

	relevant := make([]models.Shift, 0, len(existing))
	intervals := make([]Interval, 0, len(existing))
	for _, shift := range existing {
		if shift.EmployeeID != candidate.EmployeeID || shift.ShiftDate != candidate.ShiftDate {
			continue
		}
		if shift.Status == models.ShiftStatusCancelled || shift.DeletedAt != nil {
			continue
		}
		if opts.ExcludeShiftID != "" && shift.ID == opts.ExcludeShiftID {
			continue
		}
		window, err := NewInterval(shift.StartTime, shift.EndTime, shift.Overnight)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("stored shift %s has an invalid time window", shift.ID))
		}
		relevant = append(relevant, shift)
		intervals = append(intervals, window)
	}

	var overlapping []models.Shift
	for i, window := range intervals {
		if Overlaps(candidate.Window, window) {
			overlapping = append(overlapping, relevant[i])
		}
	}
	if len(overlapping) == 0 {
		return nil, nil
	}

	return &models.ConflictInfo{
		EmployeeID:  candidate.EmployeeID,
		ShiftDate:   candidate.ShiftDate,
		Shifts:      overlapping,
		Suggestions: suggestWindows(candidate.Window, intervals, opts.MaxSuggestions),
	}, nil
}

// suggestWindows proposes conflict-free alternatives of the requested
// duration, placed in the free gaps of the employee's day and ordered by
// proximity to the originally requested start. Overnight candidates get no
// suggestions: their spillover lands on the next date, which is outside the
// scanned day.
func suggestWindows(requested Interval, busy []Interval, limit int) []models.SuggestedWindow {
	if requested.Overnight {
		return nil
	}
	duration := requested.Duration()

	blocks := make([][2]int, 0, len(busy))
	for _, window := range busy {
		s, e := window.bounds()
		if e > minutesPerDay {
			e = minutesPerDay
		}
		blocks = append(blocks, [2]int{s, e})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i][0] < blocks[j][0] })

	merged := make([][2]int, 0, len(blocks))
	for _, block := range blocks {
		if n := len(merged); n > 0 && block[0] <= merged[n-1][1] {
			if block[1] > merged[n-1][1] {
				merged[n-1][1] = block[1]
			}
			continue
		}
		merged = append(merged, block)
	}

	type gap struct{ start, end int }
	gaps := make([]gap, 0, len(merged)+1)
	cursor := 0
	for _, block := range merged {
		if block[0] > cursor {
			gaps = append(gaps, gap{cursor, block[0]})
		}
		if block[1] > cursor {
			cursor = block[1]
		}
	}
	if cursor < minutesPerDay {
		gaps = append(gaps, gap{cursor, minutesPerDay})
	}

	requestedStart := int(requested.Start)
	type proposal struct {
		window   models.SuggestedWindow
		distance int
	}
	proposals := make([]proposal, 0, len(gaps))
	for _, g := range gaps {
		if g.end-g.start < duration {
			continue
		}
		start := requestedStart
		if start < g.start {
			start = g.start
		}
		if start > g.end-duration {
			start = g.end - duration
		}
		reason := "between two shifts"
		switch {
		case g.start == 0:
			reason = "before earliest shift"
		case g.end == minutesPerDay:
			reason = "after latest shift"
		}
		// A window ending exactly at midnight renders its half-open end as 00:00.
		end := (start + duration) % minutesPerDay
		proposals = append(proposals, proposal{
			window: models.SuggestedWindow{
				StartTime: TimeOfDay(start).String(),
				EndTime:   TimeOfDay(end).String(),
				Reason:    reason,
			},
			distance: abs(start - requestedStart),
		})
	}

	sort.SliceStable(proposals, func(i, j int) bool { return proposals[i].distance < proposals[j].distance })
	if len(proposals) > limit {
		proposals = proposals[:limit]
	}

	suggestions := make([]models.SuggestedWindow, len(proposals))
	for i, p := range proposals {
		suggestions[i] = p.window
	}
	return suggestions
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

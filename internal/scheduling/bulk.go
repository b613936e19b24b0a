package scheduling

import (
	"fmt"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

// EmployeeRef is the slice of employee data the planner needs.
type EmployeeRef struct {
	ID     string
	Name   string
	Active bool
}

// BulkRequest describes a cross product of employees and dates sharing one
// time window.
type BulkRequest struct {
	Employees []EmployeeRef
	Dates     []string
	Window    Interval
	Notes     string
}

// PreviewItem is one shift the bulk operation would create.
type PreviewItem struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	ShiftDate    string `json:"shift_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Overnight    bool   `json:"overnight"`
	Notes        string `json:"notes,omitempty"`
	HasConflict  bool   `json:"has_conflict"`
}

// FailedCandidate is a per-item failure collected alongside the rest of the
// batch instead of aborting it. A cross-tenant employee reference lands here
// with a FORBIDDEN code so it is never silently dropped.
type FailedCandidate struct {
	EmployeeID string `json:"employee_id"`
	ShiftDate  string `json:"shift_date"`
	Code       string `json:"code"`
	Reason     string `json:"reason"`
}

// BulkPreview is the dry-run result of a bulk creation request. Every
// candidate is listed in ShiftsToCreate; conflicted ones are flagged and
// detailed in Conflicts. No writes happen while assembling it.
type BulkPreview struct {
	TotalShifts    int                   `json:"total_shifts"`
	ShiftsToCreate []PreviewItem         `json:"shifts_to_create"`
	Conflicts      []models.ConflictInfo `json:"conflicts"`
	Warnings       []string              `json:"warnings"`
	Failed         []FailedCandidate     `json:"failed"`
}

// PlannerConfig bounds bulk planning work.
type PlannerConfig struct {
	MaxBulkShifts  int
	MaxSuggestions int
}

// Key identifies one (employee, date) pair in the existing-shift lookup.
func Key(employeeID, date string) string {
	return employeeID + "|" + date
}

// PlanBulk previews the employees x dates cross product against existing
// shifts. The cap is enforced before any per-pair work; malformed dates abort
// the whole batch. The scan runs once per (employee, date) pair.
func PlanBulk(req BulkRequest, existing map[string][]models.Shift, cfg PlannerConfig) (*BulkPreview, error) {
	if cfg.MaxBulkShifts <= 0 {
		cfg.MaxBulkShifts = 1000
	}
	if len(req.Employees) == 0 || len(req.Dates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one employee and one date are required")
	}

	total := len(req.Employees) * len(req.Dates)
	if total > cfg.MaxBulkShifts {
		return nil, appErrors.Clone(appErrors.ErrBulkLimitExceeded, fmt.Sprintf("bulk request would create %d shifts, limit is %d", total, cfg.MaxBulkShifts))
	}

	for _, date := range req.Dates {
		if _, err := ParseDate(date); err != nil {
			return nil, err
		}
	}

	preview := &BulkPreview{
		TotalShifts:    total,
		ShiftsToCreate: make([]PreviewItem, 0, total),
		Conflicts:      make([]models.ConflictInfo, 0),
		Warnings:       make([]string, 0),
		Failed:         make([]FailedCandidate, 0),
	}

	for _, employee := range req.Employees {
		if !employee.Active {
			preview.Warnings = append(preview.Warnings, fmt.Sprintf("employee %s is inactive", employee.Name))
		}
		for _, date := range req.Dates {
			candidate := Candidate{EmployeeID: employee.ID, ShiftDate: date, Window: req.Window}
			info, err := FindConflicts(candidate, existing[Key(employee.ID, date)], ScanOptions{MaxSuggestions: cfg.MaxSuggestions})
			if err != nil {
				return nil, err
			}

			item := PreviewItem{
				EmployeeID:   employee.ID,
				EmployeeName: employee.Name,
				ShiftDate:    date,
				StartTime:    req.Window.Start.String(),
				EndTime:      req.Window.End.String(),
				Overnight:    req.Window.Overnight,
				Notes:        req.Notes,
				HasConflict:  info != nil,
			}
			preview.ShiftsToCreate = append(preview.ShiftsToCreate, item)
			if info != nil {
				info.EmployeeName = employee.Name
				preview.Conflicts = append(preview.Conflicts, *info)
			}
		}
	}

	return preview, nil
}

// Strategy is the caller-chosen policy for conflicted bulk candidates.
type Strategy string

const (
	StrategySkip      Strategy = "skip"
	StrategyOverwrite Strategy = "overwrite"
	StrategyManual    Strategy = "manual"
)

// ParseStrategy validates a raw strategy value.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategySkip, StrategyOverwrite, StrategyManual:
		return Strategy(raw), nil
	default:
		return "", appErrors.Clone(appErrors.ErrUnknownStrategy, fmt.Sprintf("unknown resolution strategy %q", raw))
	}
}

// Resolution partitions the preview's candidates. The three lists together
// always equal the full candidate set.
type Resolution struct {
	ToCreate       []PreviewItem `json:"to_create"`
	ToSkip         []PreviewItem `json:"to_skip"`
	RequiresManual []PreviewItem `json:"requires_manual"`
	// CancelShiftIDs lists existing shifts to cancel in the same transaction
	// that creates the overwriting ones. Populated only by overwrite.
	CancelShiftIDs []string `json:"cancel_shift_ids,omitempty"`
}

// Resolve applies the strategy to a preview.
func Resolve(preview *BulkPreview, strategy Strategy) (*Resolution, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}

	res := &Resolution{
		ToCreate:       make([]PreviewItem, 0, len(preview.ShiftsToCreate)),
		ToSkip:         make([]PreviewItem, 0),
		RequiresManual: make([]PreviewItem, 0),
	}

	var cancelIDs []string
	if strategy == StrategyOverwrite {
		seen := make(map[string]struct{})
		for _, info := range preview.Conflicts {
			for _, shift := range info.Shifts {
				if _, ok := seen[shift.ID]; ok {
					continue
				}
				seen[shift.ID] = struct{}{}
				cancelIDs = append(cancelIDs, shift.ID)
			}
		}
	}

	for _, item := range preview.ShiftsToCreate {
		if !item.HasConflict {
			res.ToCreate = append(res.ToCreate, item)
			continue
		}
		switch strategy {
		case StrategySkip:
			res.ToSkip = append(res.ToSkip, item)
		case StrategyOverwrite:
			res.ToCreate = append(res.ToCreate, item)
		case StrategyManual:
			res.RequiresManual = append(res.RequiresManual, item)
		}
	}
	res.CancelShiftIDs = cancelIDs

	return res, nil
}

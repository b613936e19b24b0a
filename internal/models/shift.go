package models

import "time"

// ShiftStatus captures the shift record lifecycle. Status never transitions
// automatically; cancelled shifts are ignored by conflict detection.
type ShiftStatus string

const (
	ShiftStatusPending   ShiftStatus = "pending"
	ShiftStatusConfirmed ShiftStatus = "confirmed"
	ShiftStatusCancelled ShiftStatus = "cancelled"
)

// Shift is a scheduled work interval for an employee on a calendar date.
// StartTime and EndTime are canonical UTC HH:mm strings at minute resolution.
// An overnight shift stores end <= start and carries the overnight flag.
type Shift struct {
	ID         string      `db:"id" json:"id"`
	CompanyID  string      `db:"company_id" json:"company_id"`
	EmployeeID string      `db:"employee_id" json:"employee_id"`
	ShiftDate  string      `db:"shift_date" json:"shift_date"`
	StartTime  string      `db:"start_time" json:"start_time"`
	EndTime    string      `db:"end_time" json:"end_time"`
	Overnight  bool        `db:"overnight" json:"overnight"`
	Notes      string      `db:"notes" json:"notes,omitempty"`
	Status     ShiftStatus `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time  `db:"deleted_at" json:"deleted_at,omitempty"`
}

// ShiftFilter captures query params for listing shifts.
type ShiftFilter struct {
	CompanyID  string
	EmployeeID string
	DateFrom   string
	DateTo     string
	Status     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// SuggestedWindow is an alternative conflict-free time window offered to the
// caller when a candidate shift collides with existing ones.
type SuggestedWindow struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

// ConflictInfo describes the overlaps found for one employee/date pair.
// It is derived per validation call and never persisted.
type ConflictInfo struct {
	EmployeeID   string            `json:"employee_id"`
	EmployeeName string            `json:"employee_name,omitempty"`
	ShiftDate    string            `json:"shift_date"`
	Shifts       []Shift           `json:"conflicting_shifts"`
	Suggestions  []SuggestedWindow `json:"suggestions,omitempty"`
}

// ConflictCheckResult is the response shape for shift conflict validation.
type ConflictCheckResult struct {
	HasConflicts   bool           `json:"has_conflicts"`
	Conflicts      []ConflictInfo `json:"conflicts"`
	TotalConflicts int            `json:"total_conflicts"`
}

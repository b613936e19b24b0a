package dto

import (
	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/scheduling"
)

// CreateShiftRequest is the payload for scheduling a single shift.
// Times are HH:mm wall clock in the company's timezone.
type CreateShiftRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	ShiftDate  string `json:"shift_date" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
	Overnight  bool   `json:"overnight"`
	Notes      string `json:"notes" validate:"max=1000"`
}

// UpdateShiftRequest is the payload for rescheduling an existing shift.
type UpdateShiftRequest struct {
	EmployeeID string             `json:"employee_id" validate:"required"`
	ShiftDate  string             `json:"shift_date" validate:"required"`
	StartTime  string             `json:"start_time" validate:"required"`
	EndTime    string             `json:"end_time" validate:"required"`
	Overnight  bool               `json:"overnight"`
	Notes      string             `json:"notes" validate:"max=1000"`
	Status     models.ShiftStatus `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
}

// UpdateShiftStatusRequest changes only the lifecycle status.
type UpdateShiftStatusRequest struct {
	Status models.ShiftStatus `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// ValidateConflictsRequest asks whether one or more candidate shifts would
// collide with existing ones. ExcludeShiftID supports edit flows.
type ValidateConflictsRequest struct {
	Shifts         []CandidateShift `json:"shifts" validate:"required,min=1,dive"`
	ExcludeShiftID string           `json:"exclude_shift_id"`
}

// CandidateShift is one prospective shift inside a validation request.
type CandidateShift struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	ShiftDate  string `json:"shift_date" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
	Overnight  bool   `json:"overnight"`
}

// BulkShiftRequest is the cross product payload shared by the preview and
// commit endpoints.
type BulkShiftRequest struct {
	EmployeeIDs []string `json:"employee_ids" validate:"required,min=1"`
	Dates       []string `json:"dates" validate:"required,min=1"`
	StartTime   string   `json:"start_time" validate:"required"`
	EndTime     string   `json:"end_time" validate:"required"`
	Overnight   bool     `json:"overnight"`
	Notes       string   `json:"notes" validate:"max=1000"`
}

// BulkCommitRequest executes a bulk creation with a resolution strategy.
type BulkCommitRequest struct {
	BulkShiftRequest
	Strategy string `json:"conflict_strategy" validate:"required,oneof=skip overwrite manual"`
}

// BulkCommitResponse reports what the commit actually did. Failed collects
// per-item rejections (e.g. cross-tenant employee ids) so partial success
// stays visible.
type BulkCommitResponse struct {
	Created        []models.Shift               `json:"created"`
	Skipped        []scheduling.PreviewItem     `json:"skipped"`
	RequiresManual []scheduling.PreviewItem     `json:"requires_manual"`
	Failed         []scheduling.FailedCandidate `json:"failed"`
	Cancelled      []string                     `json:"cancelled_shift_ids,omitempty"`
	Conflicts      []models.ConflictInfo        `json:"conflicts,omitempty"`
	Warnings       []string                     `json:"warnings,omitempty"`
}

// WeekScheduleResponse is the weekly grid payload.
type WeekScheduleResponse struct {
	WeekStart string            `json:"week_start"`
	WeekEnd   string            `json:"week_end"`
	Days      []WeekDaySchedule `json:"days"`
}

// WeekDaySchedule groups one day's shifts by employee.
type WeekDaySchedule struct {
	Date      string              `json:"date"`
	Employees []EmployeeDayShifts `json:"employees"`
}

// EmployeeDayShifts lists an employee's shifts on one date.
type EmployeeDayShifts struct {
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	RoleID       string         `json:"role_id"`
	Shifts       []models.Shift `json:"shifts"`
}

// CreateExportRequest queues an asynchronous weekly schedule export.
type CreateExportRequest struct {
	WeekStart string              `json:"week_start" validate:"required"`
	Format    models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
)

func existingShift(id, employeeID, date, start, end string) models.Shift {
	return models.Shift{
		ID:         id,
		EmployeeID: employeeID,
		ShiftDate:  date,
		StartTime:  start,
		EndTime:    end,
		Status:     models.ShiftStatusConfirmed,
	}
}

func TestFindConflictsBoundaryTouch(t *testing.T) {
	existing := []models.Shift{existingShift("s1", "e1", "2024-01-15", "09:00", "17:00")}

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "17:00", "20:00", false)}
	info, err := FindConflicts(candidate, existing, ScanOptions{})
	require.NoError(t, err)
	assert.Nil(t, info, "boundary-touching shifts must not conflict")

	candidate.Window = mustInterval(t, "16:59", "20:00", false)
	info, err = FindConflicts(candidate, existing, ScanOptions{})
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Len(t, info.Shifts, 1)
	assert.Equal(t, "s1", info.Shifts[0].ID)
}

func TestFindConflictsIgnoresOtherDaysAndEmployees(t *testing.T) {
	existing := []models.Shift{
		existingShift("s1", "e1", "2024-01-16", "09:00", "17:00"),
		existingShift("s2", "e2", "2024-01-15", "09:00", "17:00"),
	}

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "09:00", "17:00", false)}
	info, err := FindConflicts(candidate, existing, ScanOptions{})
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestFindConflictsIgnoresCancelledAndDeleted(t *testing.T) {
	cancelled := existingShift("s1", "e1", "2024-01-15", "09:00", "17:00")
	cancelled.Status = models.ShiftStatusCancelled

	deleted := existingShift("s2", "e1", "2024-01-15", "09:00", "17:00")
	now := deleted.CreatedAt
	deleted.DeletedAt = &now

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "10:00", "12:00", false)}
	info, err := FindConflicts(candidate, []models.Shift{cancelled, deleted}, ScanOptions{})
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestFindConflictsExcludesShiftBeingEdited(t *testing.T) {
	existing := []models.Shift{existingShift("s1", "e1", "2024-01-15", "09:00", "17:00")}

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "09:00", "17:00", false)}
	info, err := FindConflicts(candidate, existing, ScanOptions{ExcludeShiftID: "s1"})
	require.NoError(t, err)
	assert.Nil(t, info, "an update must not conflict with the shift being edited")
}

func TestFindConflictsReturnsAllOverlaps(t *testing.T) {
	existing := []models.Shift{
		existingShift("s1", "e1", "2024-01-15", "09:00", "12:00"),
		existingShift("s2", "e1", "2024-01-15", "11:00", "15:00"),
		existingShift("s3", "e1", "2024-01-15", "16:00", "18:00"),
	}

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "10:00", "14:00", false)}
	info, err := FindConflicts(candidate, existing, ScanOptions{})
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Len(t, info.Shifts, 2)
	assert.Equal(t, "s1", info.Shifts[0].ID)
	assert.Equal(t, "s2", info.Shifts[1].ID)
}

func TestFindConflictsGapCandidateIsClear(t *testing.T) {
	existing := []models.Shift{
		existingShift("s1", "e1", "2024-01-15", "09:00", "12:00"),
		existingShift("s2", "e1", "2024-01-15", "14:00", "17:00"),
	}

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "12:30", "13:30", false)}
	info, err := FindConflicts(candidate, existing, ScanOptions{})
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestFindConflictsSuggestions(t *testing.T) {
	existing := []models.Shift{
		existingShift("s1", "e1", "2024-01-15", "09:00", "12:00"),
		existingShift("s2", "e1", "2024-01-15", "14:00", "17:00"),
	}

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "10:00", "11:00", false)}
	info, err := FindConflicts(candidate, existing, ScanOptions{MaxSuggestions: 3})
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Len(t, info.Suggestions, 3)

	// The 12:00-14:00 gap fits the requested hour.
	reasons := make(map[string]models.SuggestedWindow)
	for _, s := range info.Suggestions {
		reasons[s.Reason] = s
	}
	between, ok := reasons["between two shifts"]
	require.True(t, ok)
	assert.Equal(t, "12:00", between.StartTime)
	assert.Equal(t, "13:00", between.EndTime)

	before, ok := reasons["before earliest shift"]
	require.True(t, ok)
	assert.Equal(t, "08:00", before.StartTime)
	assert.Equal(t, "09:00", before.EndTime)

	after, ok := reasons["after latest shift"]
	require.True(t, ok)
	assert.Equal(t, "17:00", after.StartTime)
	assert.Equal(t, "18:00", after.EndTime)
}

func TestFindConflictsSuggestionsAreConflictFree(t *testing.T) {
	existing := []models.Shift{
		existingShift("s1", "e1", "2024-01-15", "08:00", "11:30"),
		existingShift("s2", "e1", "2024-01-15", "12:00", "13:00"),
		existingShift("s3", "e1", "2024-01-15", "15:00", "22:00"),
	}

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "09:00", "10:30", false)}
	info, err := FindConflicts(candidate, existing, ScanOptions{MaxSuggestions: 5})
	require.NoError(t, err)
	require.NotNil(t, info)
	require.NotEmpty(t, info.Suggestions)

	for _, suggestion := range info.Suggestions {
		window, err := NewInterval(suggestion.StartTime, suggestion.EndTime, suggestion.EndTime <= suggestion.StartTime)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, window.Duration(), candidate.Window.Duration())

		recheck, err := FindConflicts(Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: window}, existing, ScanOptions{})
		require.NoError(t, err)
		assert.Nil(t, recheck, "suggested window %s-%s must itself be conflict free", suggestion.StartTime, suggestion.EndTime)
	}
}

func TestFindConflictsSuggestionsRespectLimit(t *testing.T) {
	existing := []models.Shift{
		existingShift("s1", "e1", "2024-01-15", "06:00", "07:00"),
		existingShift("s2", "e1", "2024-01-15", "09:00", "10:00"),
		existingShift("s3", "e1", "2024-01-15", "12:00", "13:00"),
		existingShift("s4", "e1", "2024-01-15", "15:00", "16:00"),
	}

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "09:00", "09:30", false)}
	info, err := FindConflicts(candidate, existing, ScanOptions{MaxSuggestions: 2})
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Len(t, info.Suggestions, 2)
}

func TestFindConflictsOvernightCandidateGetsNoSuggestions(t *testing.T) {
	existing := []models.Shift{existingShift("s1", "e1", "2024-01-15", "22:00", "23:30")}

	candidate := Candidate{EmployeeID: "e1", ShiftDate: "2024-01-15", Window: mustInterval(t, "23:00", "02:00", true)}
	info, err := FindConflicts(candidate, existing, ScanOptions{})
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Empty(t, info.Suggestions)
}

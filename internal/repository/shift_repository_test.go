package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
)

func newShiftRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func shiftRows(shifts ...models.Shift) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "company_id", "employee_id", "shift_date", "start_time", "end_time", "overnight", "notes", "status", "created_at", "updated_at", "deleted_at"})
	for _, s := range shifts {
		rows.AddRow(s.ID, s.CompanyID, s.EmployeeID, s.ShiftDate, s.StartTime, s.EndTime, s.Overnight, s.Notes, s.Status, time.Now(), time.Now(), nil)
	}
	return rows
}

func TestShiftRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()

	repo := NewShiftRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shifts")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	shift := &models.Shift{
		CompanyID:  "c1",
		EmployeeID: "e1",
		ShiftDate:  "2024-01-15",
		StartTime:  "09:00",
		EndTime:    "17:00",
	}
	require.NoError(t, repo.Create(context.Background(), shift))
	require.NotEmpty(t, shift.ID)
	require.Equal(t, models.ShiftStatusPending, shift.Status)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_id, employee_id")).
		WithArgs(shift.ID, "c1").
		WillReturnRows(shiftRows(*shift))

	found, err := repo.FindByID(context.Background(), "c1", shift.ID)
	require.NoError(t, err)
	require.Equal(t, shift.ID, found.ID)
	require.Equal(t, "2024-01-15", found.ShiftDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()

	repo := NewShiftRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM shifts")).
		WithArgs("c1", "e1", "2024-01-15", "2024-01-21").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_id, employee_id")).
		WithArgs("c1", "e1", "2024-01-15", "2024-01-21", 20, 0).
		WillReturnRows(shiftRows(models.Shift{ID: "s1", CompanyID: "c1", EmployeeID: "e1", ShiftDate: "2024-01-15", StartTime: "09:00", EndTime: "17:00", Status: models.ShiftStatusConfirmed}))

	shifts, total, err := repo.List(context.Background(), models.ShiftFilter{
		CompanyID:  "c1",
		EmployeeID: "e1",
		DateFrom:   "2024-01-15",
		DateTo:     "2024-01-21",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, shifts, 1)
	require.Equal(t, "s1", shifts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryListForEmployeesOnDates(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()

	repo := NewShiftRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_id, employee_id")).
		WithArgs("c1", "e1", "e2", "2024-01-15", "2024-01-16").
		WillReturnRows(shiftRows(models.Shift{ID: "s9", CompanyID: "c1", EmployeeID: "e2", ShiftDate: "2024-01-16", StartTime: "10:00", EndTime: "18:00", Status: models.ShiftStatusConfirmed}))

	shifts, err := repo.ListForEmployeesOnDates(context.Background(), "c1", []string{"e1", "e2"}, []string{"2024-01-15", "2024-01-16"})
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	require.Equal(t, "s9", shifts[0].ID)

	empty, err := repo.ListForEmployeesOnDates(context.Background(), "c1", nil, []string{"2024-01-15"})
	require.NoError(t, err)
	require.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryBulkCreateWithCancel(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()

	repo := NewShiftRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shifts SET status = 'cancelled'")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shifts")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shifts")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	shifts := []*models.Shift{
		{CompanyID: "c1", EmployeeID: "e1", ShiftDate: "2024-01-15", StartTime: "09:00", EndTime: "17:00"},
		{CompanyID: "c1", EmployeeID: "e2", ShiftDate: "2024-01-16", StartTime: "09:00", EndTime: "17:00"},
	}
	require.NoError(t, repo.BulkCreateWithCancel(context.Background(), shifts, []string{"s9"}))
	require.NotEmpty(t, shifts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryBulkCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()

	repo := NewShiftRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shifts")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.BulkCreateWithCancel(context.Background(), []*models.Shift{
		{CompanyID: "c1", EmployeeID: "e1", ShiftDate: "2024-01-15", StartTime: "09:00", EndTime: "17:00"},
	}, nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositorySoftDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()

	repo := NewShiftRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shifts SET deleted_at")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), "c1", "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()

	repo := NewShiftRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shifts SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "c1", "s1", models.ShiftStatusConfirmed))
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
)

// shift_date is a DATE column; selecting it through to_char keeps the
// model's string representation stable regardless of driver time handling.
const shiftColumns = "id, company_id, employee_id, to_char(shift_date, 'YYYY-MM-DD') AS shift_date, start_time, end_time, overnight, notes, status, created_at, updated_at, deleted_at"

// ShiftRepository provides persistence for shifts.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository creates a new shift repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// List returns the shifts matching the filter plus the total match count.
// Soft-deleted shifts are always excluded.
func (r *ShiftRepository) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error) {
	where := "WHERE deleted_at IS NULL"
	args := []interface{}{}
	argPos := 1

	if filter.CompanyID != "" {
		where += fmt.Sprintf(" AND company_id = $%d", argPos)
		args = append(args, filter.CompanyID)
		argPos++
	}
	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND employee_id = $%d", argPos)
		args = append(args, filter.EmployeeID)
		argPos++
	}
	if filter.DateFrom != "" {
		where += fmt.Sprintf(" AND shift_date >= $%d", argPos)
		args = append(args, filter.DateFrom)
		argPos++
	}
	if filter.DateTo != "" {
		where += fmt.Sprintf(" AND shift_date <= $%d", argPos)
		args = append(args, filter.DateTo)
		argPos++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM shifts " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count shifts: %w", err)
	}

	sortBy := "shift_date"
	switch filter.SortBy {
	case "shift_date", "start_time", "created_at":
		sortBy = filter.SortBy
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := fmt.Sprintf("SELECT %s FROM shifts %s ORDER BY %s %s, start_time ASC LIMIT $%d OFFSET $%d",
		shiftColumns, where, sortBy, sortOrder, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	shifts := []models.Shift{}
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, total, nil
}

// FindByID loads a shift scoped to the company. Soft-deleted shifts are not
// returned.
func (r *ShiftRepository) FindByID(ctx context.Context, companyID, id string) (*models.Shift, error) {
	query := fmt.Sprintf(`SELECT %s FROM shifts WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, shiftColumns)
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id, companyID); err != nil {
		return nil, err
	}
	return &shift, nil
}

// ListForEmployeesOnDates loads every live shift for the given employee/date
// cross product in one round trip. Conflict scanning filters in memory.
func (r *ShiftRepository) ListForEmployeesOnDates(ctx context.Context, companyID string, employeeIDs, dates []string) ([]models.Shift, error) {
	if len(employeeIDs) == 0 || len(dates) == 0 {
		return []models.Shift{}, nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT %s FROM shifts WHERE company_id = ? AND employee_id IN (?) AND shift_date IN (?) AND deleted_at IS NULL`, shiftColumns),
		companyID, employeeIDs, dates)
	if err != nil {
		return nil, fmt.Errorf("build shift batch query: %w", err)
	}
	query = r.db.Rebind(query)

	shifts := []models.Shift{}
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, fmt.Errorf("list shifts for employees: %w", err)
	}
	return shifts, nil
}

// ListWeek loads all live shifts of a company inside [weekStart, weekEnd].
func (r *ShiftRepository) ListWeek(ctx context.Context, companyID, weekStart, weekEnd string) ([]models.Shift, error) {
	query := fmt.Sprintf(`SELECT %s FROM shifts WHERE company_id = $1 AND shift_date BETWEEN $2 AND $3 AND deleted_at IS NULL ORDER BY shift_date ASC, start_time ASC`, shiftColumns)
	shifts := []models.Shift{}
	if err := r.db.SelectContext(ctx, &shifts, query, companyID, weekStart, weekEnd); err != nil {
		return nil, fmt.Errorf("list week shifts: %w", err)
	}
	return shifts, nil
}

// Create stores a shift.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	shift.CreatedAt = now
	shift.UpdatedAt = now
	if shift.Status == "" {
		shift.Status = models.ShiftStatusPending
	}

	const query = `INSERT INTO shifts (id, company_id, employee_id, shift_date, start_time, end_time, overnight, notes, status, created_at, updated_at) VALUES (:id, :company_id, :employee_id, :shift_date, :start_time, :end_time, :overnight, :notes, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// BulkCreateWithCancel inserts a batch of shifts and cancels the listed
// existing shifts in one transaction. Either everything lands or nothing does.
func (r *ShiftRepository) BulkCreateWithCancel(ctx context.Context, shifts []*models.Shift, cancelIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk shift tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if len(cancelIDs) > 0 {
		const cancelQuery = `UPDATE shifts SET status = 'cancelled', updated_at = $2 WHERE id = ANY($1) AND deleted_at IS NULL`
		if _, err := tx.ExecContext(ctx, cancelQuery, pq.Array(cancelIDs), time.Now().UTC()); err != nil {
			return fmt.Errorf("cancel overwritten shifts: %w", err)
		}
	}

	const insertQuery = `INSERT INTO shifts (id, company_id, employee_id, shift_date, start_time, end_time, overnight, notes, status, created_at, updated_at) VALUES (:id, :company_id, :employee_id, :shift_date, :start_time, :end_time, :overnight, :notes, :status, :created_at, :updated_at)`
	now := time.Now().UTC()
	for _, shift := range shifts {
		if shift.ID == "" {
			shift.ID = uuid.NewString()
		}
		shift.CreatedAt = now
		shift.UpdatedAt = now
		if shift.Status == "" {
			shift.Status = models.ShiftStatusPending
		}
		if _, err := tx.NamedExecContext(ctx, insertQuery, shift); err != nil {
			return fmt.Errorf("insert bulk shift: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk shift tx: %w", err)
	}
	return nil
}

// Update modifies a shift record.
func (r *ShiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	shift.UpdatedAt = time.Now().UTC()
	const query = `UPDATE shifts SET employee_id = :employee_id, shift_date = :shift_date, start_time = :start_time, end_time = :end_time, overnight = :overnight, notes = :notes, status = :status, updated_at = :updated_at WHERE id = :id AND company_id = :company_id AND deleted_at IS NULL`
	res, err := r.db.NamedExecContext(ctx, query, shift)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus changes only a shift's lifecycle status.
func (r *ShiftRepository) UpdateStatus(ctx context.Context, companyID, id string, status models.ShiftStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE shifts SET status = $3, updated_at = $4 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update shift status: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete hides a shift from every query while keeping the row.
func (r *ShiftRepository) SoftDelete(ctx context.Context, companyID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE shifts SET deleted_at = $3, updated_at = $3 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

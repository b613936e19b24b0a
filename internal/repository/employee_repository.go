package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
)

const employeeColumns = "id, company_id, role_id, first_name, last_name, email, active, created_at, updated_at"

// EmployeeRepository provides persistence for roster employees.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// List returns the employees matching the filter plus the total match count.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if filter.CompanyID != "" {
		where += fmt.Sprintf(" AND company_id = $%d", argPos)
		args = append(args, filter.CompanyID)
		argPos++
	}
	if filter.RoleID != "" {
		where += fmt.Sprintf(" AND role_id = $%d", argPos)
		args = append(args, filter.RoleID)
		argPos++
	}
	if filter.Active != nil {
		where += fmt.Sprintf(" AND active = $%d", argPos)
		args = append(args, *filter.Active)
		argPos++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM employees " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	sortBy := "last_name"
	switch filter.SortBy {
	case "first_name", "last_name", "email", "created_at":
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

	query := fmt.Sprintf("SELECT %s FROM employees %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		employeeColumns, where, sortBy, sortOrder, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	employees := []models.Employee{}
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	return employees, total, nil
}

// FindByID loads an employee scoped to the company.
func (r *EmployeeRepository) FindByID(ctx context.Context, companyID, id string) (*models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1 AND company_id = $2`, employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id, companyID); err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByIDs loads a batch of employees by id, scoped to the company.
func (r *EmployeeRepository) FindByIDs(ctx context.Context, companyID string, ids []string) ([]models.Employee, error) {
	if len(ids) == 0 {
		return []models.Employee{}, nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT %s FROM employees WHERE company_id = ? AND id IN (?)`, employeeColumns),
		companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("build employee batch query: %w", err)
	}
	query = r.db.Rebind(query)

	employees := []models.Employee{}
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("find employees by ids: %w", err)
	}
	return employees, nil
}

// ExistsByEmail reports whether the company already has an employee with the
// email, optionally excluding one employee id (for updates).
func (r *EmployeeRepository) ExistsByEmail(ctx context.Context, companyID, email, excludeID string) (bool, error) {
	query := `SELECT 1 FROM employees WHERE company_id = $1 AND LOWER(email) = LOWER($2)`
	args := []interface{}{companyID, email}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}
	query += ` LIMIT 1`

	var one int
	err := r.db.GetContext(ctx, &one, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check employee email: %w", err)
	}
	return true, nil
}

// Create stores an employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	employee.CreatedAt = now
	employee.UpdatedAt = now

	const query = `INSERT INTO employees (id, company_id, role_id, first_name, last_name, email, active, created_at, updated_at) VALUES (:id, :company_id, :role_id, :first_name, :last_name, :email, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update modifies an employee record.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET role_id = :role_id, first_name = :first_name, last_name = :last_name, email = :email, active = :active, updated_at = :updated_at WHERE id = :id AND company_id = :company_id`
	res, err := r.db.NamedExecContext(ctx, query, employee)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate flips an employee to inactive without removing history.
func (r *EmployeeRepository) Deactivate(ctx context.Context, companyID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE employees SET active = FALSE, updated_at = $3 WHERE id = $1 AND company_id = $2`, id, companyID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

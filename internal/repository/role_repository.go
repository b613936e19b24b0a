package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
)

const roleColumns = "id, company_id, name, description, color, created_at, updated_at"

// RoleRepository provides persistence for company-scoped roles.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new role repository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// List returns every role of a company ordered by name.
func (r *RoleRepository) List(ctx context.Context, companyID string) ([]models.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE company_id = $1 ORDER BY name ASC`, roleColumns)
	roles := []models.Role{}
	if err := r.db.SelectContext(ctx, &roles, query, companyID); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// FindByID loads a role scoped to the company.
func (r *RoleRepository) FindByID(ctx context.Context, companyID, id string) (*models.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE id = $1 AND company_id = $2`, roleColumns)
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, id, companyID); err != nil {
		return nil, err
	}
	return &role, nil
}

// ExistsByName reports whether the company already has a role with the name,
// optionally excluding one role id (for renames).
func (r *RoleRepository) ExistsByName(ctx context.Context, companyID, name, excludeID string) (bool, error) {
	query := `SELECT 1 FROM roles WHERE company_id = $1 AND LOWER(name) = LOWER($2)`
	args := []interface{}{companyID, name}
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
		return false, fmt.Errorf("check role name: %w", err)
	}
	return true, nil
}

// Create stores a role.
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	role.CreatedAt = now
	role.UpdatedAt = now

	const query = `INSERT INTO roles (id, company_id, name, description, color, created_at, updated_at) VALUES (:id, :company_id, :name, :description, :color, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// Update modifies a role record.
func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	role.UpdatedAt = time.Now().UTC()
	const query = `UPDATE roles SET name = :name, description = :description, color = :color, updated_at = :updated_at WHERE id = :id AND company_id = :company_id`
	res, err := r.db.NamedExecContext(ctx, query, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a role. The caller must ensure no employees reference it.
func (r *RoleRepository) Delete(ctx context.Context, companyID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountEmployees returns how many employees currently hold the role.
func (r *RoleRepository) CountEmployees(ctx context.Context, companyID, roleID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM employees WHERE company_id = $1 AND role_id = $2`, companyID, roleID)
	if err != nil {
		return 0, fmt.Errorf("count role employees: %w", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
)

// CompanyRepository provides persistence for tenant companies.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create stores a company, optionally inside an existing transaction.
func (r *CompanyRepository) Create(ctx context.Context, exec sqlx.ExtContext, company *models.Company) error {
	if exec == nil {
		exec = r.db
	}
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	if company.Timezone == "" {
		company.Timezone = "UTC"
	}
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	const query = `INSERT INTO companies (id, name, timezone, created_at, updated_at) VALUES (:id, :name, :timezone, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, company); err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// FindByID loads a company by id.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	const query = `SELECT id, name, timezone, created_at, updated_at FROM companies WHERE id = $1`
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		return nil, err
	}
	return &company, nil
}

// Update modifies a company record.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now().UTC()
	const query = `UPDATE companies SET name = :name, timezone = :timezone, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
)

const exportJobColumns = "id, company_id, to_char(week_start, 'YYYY-MM-DD') AS week_start, format, status, result_url, created_by, created_at, finished_at, error_message"

// ExportRepository provides persistence for asynchronous export jobs.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository creates a new export job repository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create stores a new export job in QUEUED state.
func (r *ExportRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	job.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO export_jobs (id, company_id, week_start, format, status, created_by, created_at) VALUES (:id, :company_id, :week_start, :format, :status, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// FindByID loads an export job scoped to the company.
func (r *ExportRepository) FindByID(ctx context.Context, companyID, id string) (*models.ExportJob, error) {
	query := fmt.Sprintf(`SELECT %s FROM export_jobs WHERE id = $1 AND company_id = $2`, exportJobColumns)
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id, companyID); err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkProcessing transitions a job into PROCESSING.
func (r *ExportRepository) MarkProcessing(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE export_jobs SET status = $2 WHERE id = $1`, id, models.ExportStatusProcessing); err != nil {
		return fmt.Errorf("mark export processing: %w", err)
	}
	return nil
}

// MarkFinished records a successful export together with its download URL.
func (r *ExportRepository) MarkFinished(ctx context.Context, id, resultURL string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE export_jobs SET status = $2, result_url = $3, finished_at = $4 WHERE id = $1`,
		id, models.ExportStatusFinished, resultURL, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark export finished: %w", err)
	}
	return nil
}

// MarkFailed records a failed export with the error message.
func (r *ExportRepository) MarkFailed(ctx context.Context, id, message string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE export_jobs SET status = $2, error_message = $3, finished_at = $4 WHERE id = $1`,
		id, models.ExportStatusFailed, message, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark export failed: %w", err)
	}
	return nil
}

// ListByCompany returns a company's most recent export jobs.
func (r *ExportRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]models.ExportJob, error) {
	if limit < 1 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM export_jobs WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2`, exportJobColumns)
	jobs := []models.ExportJob{}
	if err := r.db.SelectContext(ctx, &jobs, query, companyID, limit); err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	return jobs, nil
}

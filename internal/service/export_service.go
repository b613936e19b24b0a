package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/dto"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/scheduling"
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/export"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/jobs"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/storage"
)

type exportJobRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, companyID, id string) (*models.ExportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, resultURL string) error
	MarkFailed(ctx context.Context, id, message string) error
	ListByCompany(ctx context.Context, companyID string, limit int) ([]models.ExportJob, error)
}

type weekScheduler interface {
	WeekSchedule(ctx context.Context, companyID, weekStart string) (*dto.WeekScheduleResponse, error)
}

// ExportConfig tunes the background export pipeline.
type ExportConfig struct {
	Workers    int
	MaxRetries int
}

// ExportService generates weekly schedule files (CSV or PDF) in the
// background and serves them through signed URLs.
type ExportService struct {
	repo      exportJobRepository
	schedules weekScheduler
	storage   *storage.LocalStorage
	signer    *storage.SignedURLSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

type exportPayload struct {
	JobID     string
	CompanyID string
	WeekStart string
	Format    models.ExportFormat
}

// NewExportService constructs an ExportService with its own worker queue.
// Call Start before enqueueing and Stop on shutdown.
func NewExportService(repo exportJobRepository, schedules weekScheduler, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	s := &ExportService{
		repo:      repo,
		schedules: schedules,
		storage:   store,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		metrics:   metrics,
	}
	s.queue = jobs.NewQueue("schedule-exports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue records an export job and schedules its generation.
func (s *ExportService) Enqueue(ctx context.Context, companyID, userID string, req dto.CreateExportRequest) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	if _, err := scheduling.ParseDate(req.WeekStart); err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		CompanyID: companyID,
		WeekStart: req.WeekStart,
		Format:    req.Format,
		Status:    models.ExportStatusQueued,
		CreatedBy: userID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record export job")
	}

	err := s.queue.Enqueue(jobs.Job{
		ID:   job.ID,
		Type: "schedule-export",
		Payload: exportPayload{
			JobID:     job.ID,
			CompanyID: companyID,
			WeekStart: req.WeekStart,
			Format:    req.Format,
		},
	})
	if err != nil {
		if markErr := s.repo.MarkFailed(ctx, job.ID, "export queue unavailable"); markErr != nil {
			s.logger.Warn("failed to mark export job failed", zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return job, nil
}

// Get returns the job status together with a fresh signed URL once finished.
func (s *ExportService) Get(ctx context.Context, companyID, id string) (*models.ExportJob, error) {
	job, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

// List returns the company's recent export jobs.
func (s *ExportService) List(ctx context.Context, companyID string, limit int) ([]models.ExportJob, error) {
	jobsList, err := s.repo.ListByCompany(ctx, companyID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list export jobs")
	}
	return jobsList, nil
}

// OpenSigned validates a signed download token and opens the underlying file.
func (s *ExportService) OpenSigned(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer exists")
	}
	return file, relPath, nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		return fmt.Errorf("unexpected export payload %T", job.Payload)
	}

	if err := s.repo.MarkProcessing(ctx, payload.JobID); err != nil {
		s.logger.Warn("failed to mark export processing", zap.Error(err))
	}

	week, err := s.schedules.WeekSchedule(ctx, payload.CompanyID, payload.WeekStart)
	if err != nil {
		s.fail(ctx, payload.JobID, err)
		return err
	}

	table := buildScheduleTable(week)
	var data []byte
	switch payload.Format {
	case models.ExportFormatPDF:
		data, err = s.pdf.Render(table)
	default:
		data, err = s.csv.Render(table)
	}
	if err != nil {
		s.fail(ctx, payload.JobID, err)
		return err
	}

	filename := fmt.Sprintf("%s_week_%s_%d.%s", payload.CompanyID, payload.WeekStart, time.Now().Unix(), payload.Format)
	relPath, err := s.storage.Save(filename, data)
	if err != nil {
		s.fail(ctx, payload.JobID, err)
		return err
	}

	url, _, err := s.signer.Generate(payload.JobID, relPath)
	if err != nil {
		s.fail(ctx, payload.JobID, err)
		return err
	}

	if err := s.repo.MarkFinished(ctx, payload.JobID, url); err != nil {
		s.fail(ctx, payload.JobID, err)
		return err
	}

	if s.metrics != nil {
		s.metrics.ObserveExportJob("finished")
	}
	s.logger.Info("export finished",
		zap.String("job_id", payload.JobID),
		zap.String("company_id", payload.CompanyID),
		zap.String("format", string(payload.Format)))
	return nil
}

func (s *ExportService) fail(ctx context.Context, jobID string, cause error) {
	if s.metrics != nil {
		s.metrics.ObserveExportJob("failed")
	}
	if err := s.repo.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		s.logger.Warn("failed to mark export failed", zap.Error(err))
	}
}

func buildScheduleTable(week *dto.WeekScheduleResponse) export.ScheduleTable {
	table := export.ScheduleTable{
		Title:   fmt.Sprintf("Week schedule %s to %s", week.WeekStart, week.WeekEnd),
		Headers: []string{"Date", "Employee", "Start", "End", "Overnight", "Status", "Notes"},
	}
	for _, day := range week.Days {
		for _, employee := range day.Employees {
			for _, shift := range employee.Shifts {
				overnight := ""
				if shift.Overnight {
					overnight = "yes"
				}
				table.Rows = append(table.Rows, []string{
					day.Date,
					employee.EmployeeName,
					shift.StartTime,
					shift.EndTime,
					overnight,
					string(shift.Status),
					shift.Notes,
				})
			}
		}
	}
	return table
}

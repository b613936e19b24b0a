package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/dto"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/jobs"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/storage"
)

type mockExportRepo struct {
	jobs map[string]*models.ExportJob
}

func (m *mockExportRepo) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = "job-1"
	}
	if m.jobs == nil {
		m.jobs = make(map[string]*models.ExportJob)
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *mockExportRepo) FindByID(ctx context.Context, companyID, id string) (*models.ExportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return job, nil
}

func (m *mockExportRepo) MarkProcessing(ctx context.Context, id string) error {
	m.jobs[id].Status = models.ExportStatusProcessing
	return nil
}

func (m *mockExportRepo) MarkFinished(ctx context.Context, id, resultURL string) error {
	m.jobs[id].Status = models.ExportStatusFinished
	m.jobs[id].ResultURL = &resultURL
	return nil
}

func (m *mockExportRepo) MarkFailed(ctx context.Context, id, message string) error {
	m.jobs[id].Status = models.ExportStatusFailed
	m.jobs[id].ErrorMessage = &message
	return nil
}

func (m *mockExportRepo) ListByCompany(ctx context.Context, companyID string, limit int) ([]models.ExportJob, error) {
	result := []models.ExportJob{}
	for _, job := range m.jobs {
		result = append(result, *job)
	}
	return result, nil
}

type stubWeekScheduler struct {
	week *dto.WeekScheduleResponse
	err  error
}

func (s *stubWeekScheduler) WeekSchedule(ctx context.Context, companyID, weekStart string) (*dto.WeekScheduleResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.week, nil
}

func newExportFixture(t *testing.T, scheduler weekScheduler) (*ExportService, *mockExportRepo) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	repo := &mockExportRepo{}
	return NewExportService(repo, scheduler, store, signer, nil, nil, nil, ExportConfig{Workers: 1, MaxRetries: 1}), repo
}

func sampleWeek() *dto.WeekScheduleResponse {
	return &dto.WeekScheduleResponse{
		WeekStart: "2024-01-15",
		WeekEnd:   "2024-01-21",
		Days: []dto.WeekDaySchedule{
			{
				Date: "2024-01-15",
				Employees: []dto.EmployeeDayShifts{
					{
						EmployeeID:   "e1",
						EmployeeName: "Ana Gomez",
						Shifts: []models.Shift{{
							ID: "s1", EmployeeID: "e1", ShiftDate: "2024-01-15",
							StartTime: "09:00", EndTime: "17:00", Status: models.ShiftStatusConfirmed,
						}},
					},
				},
			},
		},
	}
}

func TestExportServiceProcessCSV(t *testing.T) {
	svc, repo := newExportFixture(t, &stubWeekScheduler{week: sampleWeek()})

	job := &models.ExportJob{CompanyID: "c1", WeekStart: "2024-01-15", Format: models.ExportFormatCSV, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), job))

	err := svc.process(context.Background(), jobs.Job{
		ID:   job.ID,
		Type: "schedule-export",
		Payload: exportPayload{
			JobID:     job.ID,
			CompanyID: "c1",
			WeekStart: "2024-01-15",
			Format:    models.ExportFormatCSV,
		},
	})
	require.NoError(t, err)

	stored := repo.jobs[job.ID]
	assert.Equal(t, models.ExportStatusFinished, stored.Status)
	require.NotNil(t, stored.ResultURL)

	file, _, err := svc.OpenSigned(*stored.ResultURL)
	require.NoError(t, err)
	defer file.Close()
	info, err := file.Stat()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportServiceProcessPDF(t *testing.T) {
	svc, repo := newExportFixture(t, &stubWeekScheduler{week: sampleWeek()})

	job := &models.ExportJob{CompanyID: "c1", WeekStart: "2024-01-15", Format: models.ExportFormatPDF, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), job))

	err := svc.process(context.Background(), jobs.Job{
		ID:      job.ID,
		Type:    "schedule-export",
		Payload: exportPayload{JobID: job.ID, CompanyID: "c1", WeekStart: "2024-01-15", Format: models.ExportFormatPDF},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, repo.jobs[job.ID].Status)
}

func TestExportServiceProcessMarksFailure(t *testing.T) {
	svc, repo := newExportFixture(t, &stubWeekScheduler{err: context.DeadlineExceeded})

	job := &models.ExportJob{CompanyID: "c1", WeekStart: "2024-01-15", Format: models.ExportFormatCSV, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), job))

	err := svc.process(context.Background(), jobs.Job{
		ID:      job.ID,
		Payload: exportPayload{JobID: job.ID, CompanyID: "c1", WeekStart: "2024-01-15", Format: models.ExportFormatCSV},
	})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusFailed, repo.jobs[job.ID].Status)
	require.NotNil(t, repo.jobs[job.ID].ErrorMessage)
}

func TestExportServiceEnqueueValidatesWeekStart(t *testing.T) {
	svc, _ := newExportFixture(t, &stubWeekScheduler{week: sampleWeek()})

	_, err := svc.Enqueue(context.Background(), "c1", "user-1", dto.CreateExportRequest{
		WeekStart: "not-a-date",
		Format:    models.ExportFormatCSV,
	})
	require.Error(t, err)
}

func TestExportServiceOpenSignedRejectsTamperedToken(t *testing.T) {
	svc, _ := newExportFixture(t, &stubWeekScheduler{week: sampleWeek()})

	_, _, err := svc.OpenSigned("bogus.token.value.sig")
	require.Error(t, err)
}

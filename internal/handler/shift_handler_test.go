package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/dto"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/middleware"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/scheduling"
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

type shiftSchedulerMock struct {
	createShift     *models.Shift
	createConflicts *models.ConflictCheckResult
	createErr       error
	validateResult  *models.ConflictCheckResult
	validateErr     error
	previewResp     *scheduling.BulkPreview
	previewErr      error
	commitResp      *dto.BulkCommitResponse
	commitErr       error
	week            *dto.WeekScheduleResponse
	weekErr         error
	capturedCompany string
}

func (m *shiftSchedulerMock) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error) {
	return nil, 0, nil
}

func (m *shiftSchedulerMock) Get(ctx context.Context, companyID, id string) (*models.Shift, error) {
	return nil, appErrors.ErrNotFound
}

func (m *shiftSchedulerMock) Create(ctx context.Context, companyID string, req dto.CreateShiftRequest) (*models.Shift, *models.ConflictCheckResult, error) {
	m.capturedCompany = companyID
	return m.createShift, m.createConflicts, m.createErr
}

func (m *shiftSchedulerMock) Update(ctx context.Context, companyID, id string, req dto.UpdateShiftRequest) (*models.Shift, *models.ConflictCheckResult, error) {
	return m.createShift, m.createConflicts, m.createErr
}

func (m *shiftSchedulerMock) UpdateStatus(ctx context.Context, companyID, id string, req dto.UpdateShiftStatusRequest) error {
	return nil
}

func (m *shiftSchedulerMock) Delete(ctx context.Context, companyID, id string) error {
	return nil
}

func (m *shiftSchedulerMock) ValidateConflicts(ctx context.Context, companyID string, req dto.ValidateConflictsRequest) (*models.ConflictCheckResult, error) {
	return m.validateResult, m.validateErr
}

func (m *shiftSchedulerMock) BulkPreview(ctx context.Context, companyID string, req dto.BulkShiftRequest) (*scheduling.BulkPreview, error) {
	return m.previewResp, m.previewErr
}

func (m *shiftSchedulerMock) BulkCommit(ctx context.Context, companyID string, req dto.BulkCommitRequest) (*dto.BulkCommitResponse, error) {
	return m.commitResp, m.commitErr
}

func (m *shiftSchedulerMock) WeekSchedule(ctx context.Context, companyID, weekStart string) (*dto.WeekScheduleResponse, error) {
	return m.week, m.weekErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withManagerClaims(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:    "u1",
		CompanyID: "c1",
		Role:      models.RoleManager,
	})
}

func TestShiftHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &shiftSchedulerMock{
		createShift: &models.Shift{ID: "s1", EmployeeID: "e1", ShiftDate: "2024-01-15", StartTime: "09:00", EndTime: "17:00", Status: models.ShiftStatusPending},
	}
	handler := &ShiftHandler{service: mockSvc}

	payload, _ := json.Marshal(dto.CreateShiftRequest{
		EmployeeID: "e1", ShiftDate: "2024-01-15", StartTime: "09:00", EndTime: "17:00",
	})
	c, w := newGinContext(http.MethodPost, "/shifts", payload)
	withManagerClaims(c)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "c1", mockSvc.capturedCompany)

	var body struct {
		Data *models.Shift `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "s1", body.Data.ID)
}

func TestShiftHandlerCreateConflictCarriesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &shiftSchedulerMock{
		createConflicts: &models.ConflictCheckResult{
			HasConflicts: true,
			Conflicts: []models.ConflictInfo{{
				EmployeeID:   "e1",
				EmployeeName: "Ana Gomez",
				ShiftDate:    "2024-01-15",
				Shifts:       []models.Shift{{ID: "s9", StartTime: "09:00", EndTime: "12:00"}},
			}},
			TotalConflicts: 1,
		},
		createErr: appErrors.Clone(appErrors.ErrConflict, "shift overlaps existing shifts"),
	}
	handler := &ShiftHandler{service: mockSvc}

	payload, _ := json.Marshal(dto.CreateShiftRequest{
		EmployeeID: "e1", ShiftDate: "2024-01-15", StartTime: "10:00", EndTime: "14:00",
	})
	c, w := newGinContext(http.MethodPost, "/shifts", payload)
	withManagerClaims(c)

	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Data  *models.ConflictCheckResult `json:"data"`
		Error *appErrors.Error            `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	require.Equal(t, appErrors.ErrConflict.Code, body.Error.Code)
	require.NotNil(t, body.Data, "conflict details must ride in the data field")
	require.True(t, body.Data.HasConflicts)
	require.Len(t, body.Data.Conflicts, 1)
	require.Equal(t, "Ana Gomez", body.Data.Conflicts[0].EmployeeName)
}

func TestShiftHandlerCreateRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ShiftHandler{service: &shiftSchedulerMock{}}

	c, w := newGinContext(http.MethodPost, "/shifts", []byte(`{"employee_id":`))
	withManagerClaims(c)

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	require.Equal(t, appErrors.ErrValidation.Code, body.Error.Code)
}

func TestShiftHandlerValidateConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &shiftSchedulerMock{
		validateResult: &models.ConflictCheckResult{
			HasConflicts:   true,
			Conflicts:      []models.ConflictInfo{{EmployeeID: "e1", ShiftDate: "2024-01-15"}},
			TotalConflicts: 2,
		},
	}
	handler := &ShiftHandler{service: mockSvc}

	payload, _ := json.Marshal(dto.ValidateConflictsRequest{
		Shifts: []dto.CandidateShift{
			{EmployeeID: "e1", ShiftDate: "2024-01-15", StartTime: "10:00", EndTime: "14:00"},
		},
	})
	c, w := newGinContext(http.MethodPost, "/shifts/validate-conflicts", payload)
	withManagerClaims(c)

	handler.ValidateConflicts(c)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data *models.ConflictCheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Data.HasConflicts)
	require.Equal(t, 2, body.Data.TotalConflicts)
}

func TestShiftHandlerBulkCommitRejectsUnknownStrategy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &shiftSchedulerMock{
		commitErr: appErrors.Clone(appErrors.ErrUnknownStrategy, `unknown resolution strategy "merge"`),
	}
	handler := &ShiftHandler{service: mockSvc}

	payload, _ := json.Marshal(dto.BulkCommitRequest{
		BulkShiftRequest: dto.BulkShiftRequest{
			EmployeeIDs: []string{"e1"},
			Dates:       []string{"2024-01-15"},
			StartTime:   "09:00",
			EndTime:     "17:00",
		},
		Strategy: "merge",
	})
	c, w := newGinContext(http.MethodPost, "/shifts/bulk", payload)
	withManagerClaims(c)

	handler.BulkCommit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	require.Equal(t, appErrors.ErrUnknownStrategy.Code, body.Error.Code)
}

func TestShiftHandlerWeekRequiresWeekStart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ShiftHandler{service: &shiftSchedulerMock{}}

	c, w := newGinContext(http.MethodGet, "/shifts/week", nil)
	withManagerClaims(c)

	handler.Week(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

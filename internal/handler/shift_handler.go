package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/dto"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/scheduling"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/service"
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/response"
)

type shiftScheduler interface {
	List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error)
	Get(ctx context.Context, companyID, id string) (*models.Shift, error)
	Create(ctx context.Context, companyID string, req dto.CreateShiftRequest) (*models.Shift, *models.ConflictCheckResult, error)
	Update(ctx context.Context, companyID, id string, req dto.UpdateShiftRequest) (*models.Shift, *models.ConflictCheckResult, error)
	UpdateStatus(ctx context.Context, companyID, id string, req dto.UpdateShiftStatusRequest) error
	Delete(ctx context.Context, companyID, id string) error
	ValidateConflicts(ctx context.Context, companyID string, req dto.ValidateConflictsRequest) (*models.ConflictCheckResult, error)
	BulkPreview(ctx context.Context, companyID string, req dto.BulkShiftRequest) (*scheduling.BulkPreview, error)
	BulkCommit(ctx context.Context, companyID string, req dto.BulkCommitRequest) (*dto.BulkCommitResponse, error)
	WeekSchedule(ctx context.Context, companyID, weekStart string) (*dto.WeekScheduleResponse, error)
}

// ShiftHandler wires HTTP endpoints to the shift service.
type ShiftHandler struct {
	service shiftScheduler
}

// NewShiftHandler creates a new handler.
func NewShiftHandler(svc *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{service: svc}
}

// List godoc
// @Summary List shifts
// @Tags Shifts
// @Produce json
// @Param employee_id query string false "Filter by employee"
// @Param date_from query string false "Start date YYYY-MM-DD"
// @Param date_to query string false "End date YYYY-MM-DD"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /shifts [get]
func (h *ShiftHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := models.ShiftFilter{
		CompanyID:  claims.CompanyID,
		EmployeeID: c.Query("employee_id"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Status:     c.Query("status"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	shifts, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// EmployeeShifts godoc
// @Summary List one employee's shifts
// @Tags Shifts
// @Produce json
// @Param id path string true "Employee ID"
// @Param from query string false "Start date YYYY-MM-DD"
// @Param to query string false "End date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/shifts [get]
func (h *ShiftHandler) EmployeeShifts(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := models.ShiftFilter{
		CompanyID:  claims.CompanyID,
		EmployeeID: c.Param("id"),
		DateFrom:   c.Query("from"),
		DateTo:     c.Query("to"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 50),
	}

	shifts, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get a shift
// @Tags Shifts
// @Produce json
// @Param id path string true "Shift ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shifts/{id} [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	shift, err := h.service.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// Create godoc
// @Summary Create a shift
// @Description Schedule a shift; a 409 response carries the conflict details
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body dto.CreateShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /shifts [post]
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift payload"))
		return
	}

	claims := claimsFromContext(c)
	shift, conflicts, err := h.service.Create(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		if conflicts != nil {
			response.ErrorWithData(c, err, conflicts)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, shift)
}

// Update godoc
// @Summary Update a shift
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body dto.UpdateShiftRequest true "Shift payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /shifts/{id} [put]
func (h *ShiftHandler) Update(c *gin.Context) {
	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift payload"))
		return
	}

	claims := claimsFromContext(c)
	shift, conflicts, err := h.service.Update(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		if conflicts != nil {
			response.ErrorWithData(c, err, conflicts)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// UpdateStatus godoc
// @Summary Change a shift's status
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body dto.UpdateShiftStatusRequest true "Status payload"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /shifts/{id}/status [patch]
func (h *ShiftHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateShiftStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	claims := claimsFromContext(c)
	if err := h.service.UpdateStatus(c.Request.Context(), claims.CompanyID, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a shift
// @Tags Shifts
// @Param id path string true "Shift ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /shifts/{id} [delete]
func (h *ShiftHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.Delete(c.Request.Context(), claims.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ValidateConflicts godoc
// @Summary Validate candidate shifts
// @Description Dry-run conflict detection with suggested alternatives; writes nothing. A candidate referencing an employee outside the caller's company rejects the whole request with 403.
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body dto.ValidateConflictsRequest true "Candidates payload"
// @Success 200 {object} response.Envelope
// @Router /shifts/validate-conflicts [post]
func (h *ShiftHandler) ValidateConflicts(c *gin.Context) {
	var req dto.ValidateConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validation payload"))
		return
	}

	claims := claimsFromContext(c)
	result, err := h.service.ValidateConflicts(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// BulkPreview godoc
// @Summary Preview a bulk creation
// @Description Dry-run the employees x dates cross product; writes nothing
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body dto.BulkShiftRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /shifts/bulk/preview [post]
func (h *ShiftHandler) BulkPreview(c *gin.Context) {
	var req dto.BulkShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}

	claims := claimsFromContext(c)
	preview, err := h.service.BulkPreview(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// BulkCommit godoc
// @Summary Execute a bulk creation
// @Description Apply a resolution strategy (skip, overwrite, manual) and create shifts
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body dto.BulkCommitRequest true "Bulk commit payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /shifts/bulk [post]
func (h *ShiftHandler) BulkCommit(c *gin.Context) {
	var req dto.BulkCommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}

	claims := claimsFromContext(c)
	result, err := h.service.BulkCommit(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, nil)
}

// Week godoc
// @Summary Weekly schedule
// @Description Seven-day grid starting at week_start, grouped by day and employee
// @Tags Shifts
// @Produce json
// @Param week_start query string true "Week start date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /shifts/week [get]
func (h *ShiftHandler) Week(c *gin.Context) {
	weekStart := c.Query("week_start")
	if weekStart == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week_start is required"))
		return
	}

	claims := claimsFromContext(c)
	week, err := h.service.WeekSchedule(c.Request.Context(), claims.CompanyID, weekStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

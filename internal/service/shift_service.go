package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/dto"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/repository"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/scheduling"
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

type shiftRepository interface {
	List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Shift, error)
	ListForEmployeesOnDates(ctx context.Context, companyID string, employeeIDs, dates []string) ([]models.Shift, error)
	ListWeek(ctx context.Context, companyID, weekStart, weekEnd string) ([]models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
	BulkCreateWithCancel(ctx context.Context, shifts []*models.Shift, cancelIDs []string) error
	Update(ctx context.Context, shift *models.Shift) error
	UpdateStatus(ctx context.Context, companyID, id string, status models.ShiftStatus) error
	SoftDelete(ctx context.Context, companyID, id string) error
}

type shiftEmployeeRepository interface {
	FindByID(ctx context.Context, companyID, id string) (*models.Employee, error)
	FindByIDs(ctx context.Context, companyID string, ids []string) ([]models.Employee, error)
}

type shiftCompanyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ShiftConfig tunes conflict detection, bulk limits and week caching.
type ShiftConfig struct {
	MaxBulkShifts  int
	MaxSuggestions int
	CacheEnabled   bool
	CacheTTL       time.Duration
}

// ShiftService owns the scheduling use cases: CRUD, conflict validation, bulk
// creation and the weekly view. Shift times are persisted as canonical UTC
// HH:mm; requests arrive in the company's timezone and are converted on the
// way in.
type ShiftService struct {
	shifts    shiftRepository
	employees shiftEmployeeRepository
	companies shiftCompanyRepository
	cache     scheduleCache
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    ShiftConfig
}

// NewShiftService constructs a ShiftService instance.
func NewShiftService(shifts shiftRepository, employees shiftEmployeeRepository, companies shiftCompanyRepository, cache scheduleCache, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config ShiftConfig) *ShiftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.MaxBulkShifts <= 0 {
		config.MaxBulkShifts = 1000
	}
	if config.MaxSuggestions <= 0 {
		config.MaxSuggestions = 3
	}
	return &ShiftService{
		shifts:    shifts,
		employees: employees,
		companies: companies,
		cache:     cache,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		config:    config,
	}
}

// List returns shifts matching the filter, scoped to the company.
func (s *ShiftService) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error) {
	shifts, total, err := s.shifts.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}
	return shifts, total, nil
}

// Get loads a single shift.
func (s *ShiftService) Get(ctx context.Context, companyID, id string) (*models.Shift, error) {
	shift, err := s.shifts.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	return shift, nil
}

// Create validates and persists a single shift. When the window collides with
// existing shifts the conflict details are returned alongside ErrConflict and
// nothing is written.
func (s *ShiftService) Create(ctx context.Context, companyID string, req dto.CreateShiftRequest) (*models.Shift, *models.ConflictCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}

	employee, err := s.employees.FindByID(ctx, companyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if !employee.Active {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "cannot schedule an inactive employee")
	}

	date, window, err := s.normalizeWindow(ctx, companyID, req.ShiftDate, req.StartTime, req.EndTime, req.Overnight)
	if err != nil {
		return nil, nil, err
	}

	info, err := s.scanDay(ctx, companyID, req.EmployeeID, date, window, "")
	if err != nil {
		return nil, nil, err
	}
	if info != nil {
		info.EmployeeName = employee.FullName()
		return nil, conflictResult(info), appErrors.Clone(appErrors.ErrConflict, "shift overlaps existing shifts")
	}

	shift := &models.Shift{
		CompanyID:  companyID,
		EmployeeID: req.EmployeeID,
		ShiftDate:  date,
		StartTime:  window.Start.String(),
		EndTime:    window.End.String(),
		Overnight:  window.Overnight,
		Notes:      req.Notes,
		Status:     models.ShiftStatusPending,
	}
	if err := s.shifts.Create(ctx, shift); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift")
	}

	s.invalidateWeeks(ctx, companyID)
	s.logger.Info("shift created",
		zap.String("shift_id", shift.ID),
		zap.String("employee_id", shift.EmployeeID),
		zap.String("shift_date", shift.ShiftDate))
	return shift, nil, nil
}

// Update reschedules an existing shift. The shift being edited is excluded
// from the conflict scan so it never collides with itself.
func (s *ShiftService) Update(ctx context.Context, companyID, id string, req dto.UpdateShiftRequest) (*models.Shift, *models.ConflictCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}

	shift, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, nil, err
	}

	employee, err := s.employees.FindByID(ctx, companyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	date, window, err := s.normalizeWindow(ctx, companyID, req.ShiftDate, req.StartTime, req.EndTime, req.Overnight)
	if err != nil {
		return nil, nil, err
	}

	info, err := s.scanDay(ctx, companyID, req.EmployeeID, date, window, id)
	if err != nil {
		return nil, nil, err
	}
	if info != nil {
		info.EmployeeName = employee.FullName()
		return nil, conflictResult(info), appErrors.Clone(appErrors.ErrConflict, "shift overlaps existing shifts")
	}

	shift.EmployeeID = req.EmployeeID
	shift.ShiftDate = date
	shift.StartTime = window.Start.String()
	shift.EndTime = window.End.String()
	shift.Overnight = window.Overnight
	shift.Notes = req.Notes
	if req.Status != "" {
		shift.Status = req.Status
	}

	if err := s.shifts.Update(ctx, shift); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift")
	}

	s.invalidateWeeks(ctx, companyID)
	return shift, nil, nil
}

// UpdateStatus changes only a shift's lifecycle status. No conflict scan runs:
// cancelling can only free a day, and confirming does not move the window.
func (s *ShiftService) UpdateStatus(ctx context.Context, companyID, id string, req dto.UpdateShiftStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if err := s.shifts.UpdateStatus(ctx, companyID, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift status")
	}
	s.invalidateWeeks(ctx, companyID)
	return nil
}

// Delete soft-deletes a shift.
func (s *ShiftService) Delete(ctx context.Context, companyID, id string) error {
	if err := s.shifts.SoftDelete(ctx, companyID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete shift")
	}
	s.invalidateWeeks(ctx, companyID)
	return nil
}

// ValidateConflicts dry-runs one or more candidate shifts against the stored
// schedule and reports every overlap with suggested alternatives. Nothing is
// written. Unlike the bulk endpoints, which collect cross-tenant employee ids
// as per-item failures and keep going, a single foreign employee here rejects
// the whole request with FORBIDDEN: the response shape has no per-item failure
// slot and a partial conflict report would read as "no conflicts" for the
// dropped candidates.
func (s *ShiftService) ValidateConflicts(ctx context.Context, companyID string, req dto.ValidateConflictsRequest) (*models.ConflictCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation payload")
	}

	employeeIDs := make([]string, 0, len(req.Shifts))
	dates := make([]string, 0, len(req.Shifts))
	seenEmployees := make(map[string]struct{})
	seenDates := make(map[string]struct{})
	for _, candidate := range req.Shifts {
		if _, ok := seenEmployees[candidate.EmployeeID]; !ok {
			seenEmployees[candidate.EmployeeID] = struct{}{}
			employeeIDs = append(employeeIDs, candidate.EmployeeID)
		}
		if _, ok := seenDates[candidate.ShiftDate]; !ok {
			seenDates[candidate.ShiftDate] = struct{}{}
			dates = append(dates, candidate.ShiftDate)
		}
	}

	employees, err := s.employees.FindByIDs(ctx, companyID, employeeIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	if len(employees) != len(employeeIDs) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "one or more employees do not belong to this company")
	}
	names := make(map[string]string, len(employees))
	for _, employee := range employees {
		names[employee.ID] = employee.FullName()
	}

	company, err := s.company(ctx, companyID)
	if err != nil {
		return nil, err
	}

	// Pre-parse every window so a malformed candidate aborts before scanning.
	type parsed struct {
		employeeID string
		date       string
		window     scheduling.Interval
	}
	candidates := make([]parsed, 0, len(req.Shifts))
	for _, candidate := range req.Shifts {
		date, window, err := normalizeWindowIn(company.Timezone, candidate.ShiftDate, candidate.StartTime, candidate.EndTime, candidate.Overnight)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, parsed{employeeID: candidate.EmployeeID, date: date, window: window})
		if _, ok := seenDates[date]; !ok {
			seenDates[date] = struct{}{}
			dates = append(dates, date)
		}
	}

	existing, err := s.shifts.ListForEmployeesOnDates(ctx, companyID, employeeIDs, dates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing shifts")
	}
	byPair := groupByPair(existing)

	result := &models.ConflictCheckResult{Conflicts: []models.ConflictInfo{}}
	for _, candidate := range candidates {
		info, err := scheduling.FindConflicts(
			scheduling.Candidate{EmployeeID: candidate.employeeID, ShiftDate: candidate.date, Window: candidate.window},
			byPair[scheduling.Key(candidate.employeeID, candidate.date)],
			scheduling.ScanOptions{ExcludeShiftID: req.ExcludeShiftID, MaxSuggestions: s.config.MaxSuggestions},
		)
		if err != nil {
			return nil, err
		}
		if info != nil {
			info.EmployeeName = names[candidate.employeeID]
			result.Conflicts = append(result.Conflicts, *info)
			result.TotalConflicts += len(info.Shifts)
		}
	}
	result.HasConflicts = len(result.Conflicts) > 0
	return result, nil
}

// BulkPreview dry-runs the employees x dates cross product.
func (s *ShiftService) BulkPreview(ctx context.Context, companyID string, req dto.BulkShiftRequest) (*scheduling.BulkPreview, error) {
	plan, _, err := s.planBulk(ctx, companyID, req)
	return plan, err
}

// BulkCommit executes a bulk creation under the chosen conflict strategy.
// Creation and overwrite cancellations share one transaction.
func (s *ShiftService) BulkCommit(ctx context.Context, companyID string, req dto.BulkCommitRequest) (*dto.BulkCommitResponse, error) {
	strategy, err := scheduling.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	preview, window, err := s.planBulk(ctx, companyID, req.BulkShiftRequest)
	if err != nil {
		return nil, err
	}

	resolution, err := scheduling.Resolve(preview, strategy)
	if err != nil {
		return nil, err
	}

	created := make([]models.Shift, 0, len(resolution.ToCreate))
	toInsert := make([]*models.Shift, 0, len(resolution.ToCreate))
	for _, item := range resolution.ToCreate {
		shift := &models.Shift{
			CompanyID:  companyID,
			EmployeeID: item.EmployeeID,
			ShiftDate:  item.ShiftDate,
			StartTime:  window.Start.String(),
			EndTime:    window.End.String(),
			Overnight:  window.Overnight,
			Notes:      req.Notes,
			Status:     models.ShiftStatusPending,
		}
		toInsert = append(toInsert, shift)
	}

	if len(toInsert) > 0 || len(resolution.CancelShiftIDs) > 0 {
		if err := s.shifts.BulkCreateWithCancel(ctx, toInsert, resolution.CancelShiftIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shifts in bulk")
		}
		s.invalidateWeeks(ctx, companyID)
	}

	for _, shift := range toInsert {
		created = append(created, *shift)
	}

	if s.metrics != nil {
		s.metrics.ObserveBulkOutcome("created", len(created))
		s.metrics.ObserveBulkOutcome("skipped", len(resolution.ToSkip))
		s.metrics.ObserveBulkOutcome("requires_manual", len(resolution.RequiresManual))
		s.metrics.ObserveBulkOutcome("cancelled", len(resolution.CancelShiftIDs))
	}

	s.logger.Info("bulk shifts committed",
		zap.String("company_id", companyID),
		zap.String("strategy", string(strategy)),
		zap.Int("created", len(created)),
		zap.Int("skipped", len(resolution.ToSkip)),
		zap.Int("cancelled", len(resolution.CancelShiftIDs)))

	return &dto.BulkCommitResponse{
		Created:        created,
		Skipped:        resolution.ToSkip,
		RequiresManual: resolution.RequiresManual,
		Failed:         preview.Failed,
		Cancelled:      resolution.CancelShiftIDs,
		Conflicts:      preview.Conflicts,
		Warnings:       preview.Warnings,
	}, nil
}

// WeekSchedule assembles the weekly grid, cached per company and week.
func (s *ShiftService) WeekSchedule(ctx context.Context, companyID, weekStart string) (*dto.WeekScheduleResponse, error) {
	start, err := scheduling.ParseDate(weekStart)
	if err != nil {
		return nil, err
	}
	weekEnd := start.AddDate(0, 0, 6).Format(scheduling.DateLayout)

	cacheKey := repository.WeekScheduleKey(companyID, weekStart)
	if s.config.CacheEnabled && s.cache != nil {
		var cached dto.WeekScheduleResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.ObserveCacheHit(true)
			}
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("week schedule cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheHit(false)
		}
	}

	shifts, err := s.shifts.ListWeek(ctx, companyID, weekStart, weekEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week shifts")
	}

	employeeIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, shift := range shifts {
		if _, ok := seen[shift.EmployeeID]; !ok {
			seen[shift.EmployeeID] = struct{}{}
			employeeIDs = append(employeeIDs, shift.EmployeeID)
		}
	}
	employees, err := s.employees.FindByIDs(ctx, companyID, employeeIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	byID := make(map[string]models.Employee, len(employees))
	for _, employee := range employees {
		byID[employee.ID] = employee
	}

	response := &dto.WeekScheduleResponse{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Days:      make([]dto.WeekDaySchedule, 0, 7),
	}
	for offset := 0; offset < 7; offset++ {
		date := start.AddDate(0, 0, offset).Format(scheduling.DateLayout)
		day := dto.WeekDaySchedule{Date: date, Employees: []dto.EmployeeDayShifts{}}

		perEmployee := make(map[string][]models.Shift)
		for _, shift := range shifts {
			if shift.ShiftDate == date {
				perEmployee[shift.EmployeeID] = append(perEmployee[shift.EmployeeID], shift)
			}
		}

		ids := make([]string, 0, len(perEmployee))
		for id := range perEmployee {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			employee := byID[id]
			day.Employees = append(day.Employees, dto.EmployeeDayShifts{
				EmployeeID:   id,
				EmployeeName: employee.FullName(),
				RoleID:       employee.RoleID,
				Shifts:       perEmployee[id],
			})
		}
		response.Days = append(response.Days, day)
	}

	if s.config.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response, s.config.CacheTTL); err != nil {
			s.logger.Warn("week schedule cache write failed", zap.Error(err))
		}
	}
	return response, nil
}

func (s *ShiftService) planBulk(ctx context.Context, companyID string, req dto.BulkShiftRequest) (*scheduling.BulkPreview, scheduling.Interval, error) {
	var zero scheduling.Interval
	if err := s.validator.Struct(req); err != nil {
		return nil, zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}

	total := len(req.EmployeeIDs) * len(req.Dates)
	if total > s.config.MaxBulkShifts {
		return nil, zero, appErrors.Clone(appErrors.ErrBulkLimitExceeded,
			fmt.Sprintf("bulk request would create %d shifts, limit is %d", total, s.config.MaxBulkShifts))
	}

	employees, err := s.employees.FindByIDs(ctx, companyID, req.EmployeeIDs)
	if err != nil {
		return nil, zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	found := make(map[string]models.Employee, len(employees))
	for _, employee := range employees {
		found[employee.ID] = employee
	}

	company, err := s.company(ctx, companyID)
	if err != nil {
		return nil, zero, err
	}

	// All dates share one window; conversion runs against the first date and
	// any day offset shifts each date uniformly.
	dates, window, err := normalizeBulkDates(company.Timezone, req)
	if err != nil {
		return nil, zero, err
	}

	existing, err := s.shifts.ListForEmployeesOnDates(ctx, companyID, req.EmployeeIDs, dates)
	if err != nil {
		return nil, zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing shifts")
	}

	// Unknown or cross-tenant employee ids become per-item failures with a
	// distinct code; the rest of the batch still goes through.
	refs := make([]scheduling.EmployeeRef, 0, len(employees))
	missing := make([]string, 0)
	for _, id := range req.EmployeeIDs {
		if employee, ok := found[id]; ok {
			refs = append(refs, scheduling.EmployeeRef{ID: employee.ID, Name: employee.FullName(), Active: employee.Active})
		} else {
			missing = append(missing, id)
		}
	}

	var preview *scheduling.BulkPreview
	if len(refs) > 0 {
		preview, err = scheduling.PlanBulk(scheduling.BulkRequest{
			Employees: refs,
			Dates:     dates,
			Window:    window,
			Notes:     req.Notes,
		}, groupByPair(existing), scheduling.PlannerConfig{
			MaxBulkShifts:  s.config.MaxBulkShifts,
			MaxSuggestions: s.config.MaxSuggestions,
		})
		if err != nil {
			return nil, zero, err
		}
	} else {
		preview = &scheduling.BulkPreview{
			ShiftsToCreate: []scheduling.PreviewItem{},
			Conflicts:      []models.ConflictInfo{},
			Warnings:       []string{},
			Failed:         []scheduling.FailedCandidate{},
		}
	}
	preview.TotalShifts = total

	for _, id := range missing {
		for _, date := range dates {
			preview.Failed = append(preview.Failed, scheduling.FailedCandidate{
				EmployeeID: id,
				ShiftDate:  date,
				Code:       appErrors.ErrForbidden.Code,
				Reason:     "employee does not belong to this company",
			})
		}
	}
	return preview, window, nil
}

func (s *ShiftService) scanDay(ctx context.Context, companyID, employeeID, date string, window scheduling.Interval, excludeID string) (*models.ConflictInfo, error) {
	existing, err := s.shifts.ListForEmployeesOnDates(ctx, companyID, []string{employeeID}, []string{date})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing shifts")
	}
	info, err := scheduling.FindConflicts(
		scheduling.Candidate{EmployeeID: employeeID, ShiftDate: date, Window: window},
		existing,
		scheduling.ScanOptions{ExcludeShiftID: excludeID, MaxSuggestions: s.config.MaxSuggestions},
	)
	if err == nil && s.metrics != nil {
		found := 0
		if info != nil {
			found = len(info.Shifts)
		}
		s.metrics.ObserveConflictScan(found)
	}
	return info, err
}

func (s *ShiftService) normalizeWindow(ctx context.Context, companyID, date, start, end string, overnight bool) (string, scheduling.Interval, error) {
	company, err := s.company(ctx, companyID)
	if err != nil {
		return "", scheduling.Interval{}, err
	}
	return normalizeWindowIn(company.Timezone, date, start, end, overnight)
}

func (s *ShiftService) company(ctx context.Context, companyID string) (*models.Company, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	return company, nil
}

func (s *ShiftService) invalidateWeeks(ctx context.Context, companyID string) {
	if !s.config.CacheEnabled || s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.WeekSchedulePattern(companyID)); err != nil {
		s.logger.Warn("week schedule cache invalidation failed", zap.Error(err))
	}
}

// normalizeWindowIn validates the local window, converts it to canonical UTC
// and shifts the date when the start crosses a calendar-day boundary. A window
// that wraps UTC midnight after conversion comes back flagged overnight.
func normalizeWindowIn(timezone, date, start, end string, overnight bool) (string, scheduling.Interval, error) {
	// Validate the local window first so end-before-start without the
	// overnight flag fails before any timezone math.
	if _, err := scheduling.NewInterval(start, end, overnight); err != nil {
		return "", scheduling.Interval{}, err
	}

	startUTC, offset, err := scheduling.ToCanonical(start, date, timezone)
	if err != nil {
		return "", scheduling.Interval{}, err
	}
	endUTC, _, err := scheduling.ToCanonical(end, date, timezone)
	if err != nil {
		return "", scheduling.Interval{}, err
	}

	day, err := scheduling.ParseDate(date)
	if err != nil {
		return "", scheduling.Interval{}, err
	}
	canonicalDate := day.AddDate(0, 0, offset).Format(scheduling.DateLayout)

	window, err := scheduling.NewInterval(startUTC, endUTC, overnight || endUTC <= startUTC)
	if err != nil {
		return "", scheduling.Interval{}, err
	}
	return canonicalDate, window, nil
}

// normalizeBulkDates converts the shared wall-clock window once, from the
// first date, and applies that date's UTC day offset to every date in the
// batch. All items therefore share one canonical window; when the batch
// straddles a DST transition, dates on the far side keep the first date's
// UTC offset rather than their own.
func normalizeBulkDates(timezone string, req dto.BulkShiftRequest) ([]string, scheduling.Interval, error) {
	var zero scheduling.Interval
	if len(req.Dates) == 0 {
		return nil, zero, appErrors.Clone(appErrors.ErrValidation, "at least one date is required")
	}

	first, window, err := normalizeWindowIn(timezone, req.Dates[0], req.StartTime, req.EndTime, req.Overnight)
	if err != nil {
		return nil, zero, err
	}

	firstDay, err := scheduling.ParseDate(req.Dates[0])
	if err != nil {
		return nil, zero, err
	}
	canonicalFirst, err := scheduling.ParseDate(first)
	if err != nil {
		return nil, zero, err
	}
	offset := int(canonicalFirst.Sub(firstDay).Hours() / 24)

	dates := make([]string, 0, len(req.Dates))
	for _, raw := range req.Dates {
		day, err := scheduling.ParseDate(raw)
		if err != nil {
			return nil, zero, err
		}
		dates = append(dates, day.AddDate(0, 0, offset).Format(scheduling.DateLayout))
	}
	return dates, window, nil
}

func groupByPair(shifts []models.Shift) map[string][]models.Shift {
	grouped := make(map[string][]models.Shift, len(shifts))
	for _, shift := range shifts {
		key := scheduling.Key(shift.EmployeeID, shift.ShiftDate)
		grouped[key] = append(grouped[key], shift)
	}
	return grouped
}

func conflictResult(info *models.ConflictInfo) *models.ConflictCheckResult {
	return &models.ConflictCheckResult{
		HasConflicts:   true,
		Conflicts:      []models.ConflictInfo{*info},
		TotalConflicts: len(info.Shifts),
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/dto"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Employee, error)
	ExistsByEmail(ctx context.Context, companyID, email, excludeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Deactivate(ctx context.Context, companyID, id string) error
}

type employeeRoleRepository interface {
	FindByID(ctx context.Context, companyID, id string) (*models.Role, error)
}

// EmployeeService manages the company roster.
type EmployeeService struct {
	repo      employeeRepository
	roles     employeeRoleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs an EmployeeService instance.
func NewEmployeeService(repo employeeRepository, roles employeeRoleRepository, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EmployeeService{repo: repo, roles: roles, validator: validate, logger: logger}
}

// List returns employees matching the filter plus the total match count.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return employees, total, nil
}

// Get loads one employee.
func (s *EmployeeService) Get(ctx context.Context, companyID, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create adds a roster employee. The role must belong to the same company and
// the email must be unique within it.
func (s *EmployeeService) Create(ctx context.Context, companyID string, req dto.CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	if _, err := s.roles.FindByID(ctx, companyID, req.RoleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "role does not exist in this company")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role")
	}

	taken, err := s.repo.ExistsByEmail(ctx, companyID, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "an employee with this email already exists")
	}

	employee := &models.Employee{
		CompanyID: companyID,
		RoleID:    req.RoleID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Active:    true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}

	s.logger.Info("employee created",
		zap.String("employee_id", employee.ID),
		zap.String("company_id", companyID))
	return employee, nil
}

// Update edits a roster employee.
func (s *EmployeeService) Update(ctx context.Context, companyID, id string, req dto.UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	employee, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.roles.FindByID(ctx, companyID, req.RoleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "role does not exist in this company")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role")
	}

	taken, err := s.repo.ExistsByEmail(ctx, companyID, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "an employee with this email already exists")
	}

	employee.RoleID = req.RoleID
	employee.FirstName = req.FirstName
	employee.LastName = req.LastName
	employee.Email = req.Email
	if req.Active != nil {
		employee.Active = *req.Active
	}

	if err := s.repo.Update(ctx, employee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return employee, nil
}

// Deactivate retires an employee without losing shift history. Existing
// shifts stay in place; new ones are rejected at creation time.
func (s *EmployeeService) Deactivate(ctx context.Context, companyID, id string) error {
	if err := s.repo.Deactivate(ctx, companyID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate employee")
	}
	return nil
}

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

type roleRepository interface {
	List(ctx context.Context, companyID string) ([]models.Role, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Role, error)
	ExistsByName(ctx context.Context, companyID, name, excludeID string) (bool, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, companyID, id string) error
	CountEmployees(ctx context.Context, companyID, roleID string) (int, error)
}

// RoleService manages company-scoped roles.
type RoleService struct {
	repo      roleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoleService constructs a RoleService instance.
func NewRoleService(repo roleRepository, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoleService{repo: repo, validator: validate, logger: logger}
}

// List returns every role of the company.
func (s *RoleService) List(ctx context.Context, companyID string) ([]models.Role, error) {
	roles, err := s.repo.List(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roles")
	}
	return roles, nil
}

// Get loads one role.
func (s *RoleService) Get(ctx context.Context, companyID, id string) (*models.Role, error) {
	role, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role")
	}
	return role, nil
}

// Create adds a role. Names are unique per company, case-insensitively.
func (s *RoleService) Create(ctx context.Context, companyID string, req dto.CreateRoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}

	taken, err := s.repo.ExistsByName(ctx, companyID, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "a role with this name already exists")
	}

	role := &models.Role{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role")
	}
	return role, nil
}

// Update renames or recolors a role.
func (s *RoleService) Update(ctx context.Context, companyID, id string, req dto.UpdateRoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}

	role, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByName(ctx, companyID, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "a role with this name already exists")
	}

	role.Name = req.Name
	role.Description = req.Description
	role.Color = req.Color
	if err := s.repo.Update(ctx, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	return role, nil
}

// Delete removes a role. Roles still held by employees cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, companyID, id string) error {
	count, err := s.repo.CountEmployees(ctx, companyID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role usage")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "role is still assigned to employees")
	}

	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete role")
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/dto"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

type mockRoleRepo struct {
	roles         map[string]*models.Role
	nameTaken     bool
	employeeCount int
}

func (m *mockRoleRepo) List(ctx context.Context, companyID string) ([]models.Role, error) {
	result := []models.Role{}
	for _, role := range m.roles {
		result = append(result, *role)
	}
	return result, nil
}

func (m *mockRoleRepo) FindByID(ctx context.Context, companyID, id string) (*models.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return role, nil
}

func (m *mockRoleRepo) ExistsByName(ctx context.Context, companyID, name, excludeID string) (bool, error) {
	return m.nameTaken, nil
}

func (m *mockRoleRepo) Create(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = "role-1"
	}
	if m.roles == nil {
		m.roles = make(map[string]*models.Role)
	}
	m.roles[role.ID] = role
	return nil
}

func (m *mockRoleRepo) Update(ctx context.Context, role *models.Role) error {
	m.roles[role.ID] = role
	return nil
}

func (m *mockRoleRepo) Delete(ctx context.Context, companyID, id string) error {
	if _, ok := m.roles[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.roles, id)
	return nil
}

func (m *mockRoleRepo) CountEmployees(ctx context.Context, companyID, roleID string) (int, error) {
	return m.employeeCount, nil
}

func TestRoleServiceCreate(t *testing.T) {
	repo := &mockRoleRepo{}
	svc := NewRoleService(repo, nil, nil)

	role, err := svc.Create(context.Background(), "c1", dto.CreateRoleRequest{
		Name:        "Kitchen",
		Description: "Back of house",
		Color:       "#FF8800",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", role.CompanyID)
	assert.Equal(t, "Kitchen", role.Name)
}

func TestRoleServiceCreateRejectsDuplicateName(t *testing.T) {
	repo := &mockRoleRepo{nameTaken: true}
	svc := NewRoleService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "c1", dto.CreateRoleRequest{Name: "Kitchen"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
}

func TestRoleServiceDeleteRejectsRoleInUse(t *testing.T) {
	repo := &mockRoleRepo{
		roles:         map[string]*models.Role{"role-1": {ID: "role-1", CompanyID: "c1", Name: "Kitchen"}},
		employeeCount: 3,
	}
	svc := NewRoleService(repo, nil, nil)

	err := svc.Delete(context.Background(), "c1", "role-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	repo.employeeCount = 0
	require.NoError(t, svc.Delete(context.Background(), "c1", "role-1"))
}

func TestRoleServiceGetNotFound(t *testing.T) {
	svc := NewRoleService(&mockRoleRepo{}, nil, nil)

	_, err := svc.Get(context.Background(), "c1", "missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

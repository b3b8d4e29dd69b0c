// AngelaMos | 2026
// service_test.go

package role

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeep/internal/core"
)

type fakeRepo struct {
	Repository

	byID      map[string]*Role
	createErr error
	updateErr error
	created   *Role
}

func (f *fakeRepo) Create(ctx context.Context, role *Role) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = role
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Role, error) {
	role, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *role
	return &copied, nil
}

func (f *fakeRepo) Update(ctx context.Context, role *Role) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.byID[role.ID] = role
	return nil
}

type fakePermissionNamer struct {
	names []string
}

func (f *fakePermissionNamer) PermissionNamesForRole(
	ctx context.Context,
	roleID string,
) ([]string, error) {
	return f.names, nil
}

func TestCreateRole(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakePermissionNamer{})

	role, err := svc.CreateRole(context.Background(), CreateRoleRequest{
		Name:        "Editor",
		Description: "Can edit content",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, role.ID)
	assert.Equal(t, "Editor", role.Name)
	assert.Same(t, role, repo.created)
}

func TestCreateRoleDuplicateNameIsConflict(t *testing.T) {
	repo := &fakeRepo{createErr: core.ErrDuplicateKey}
	svc := NewService(repo, &fakePermissionNamer{})

	_, err := svc.CreateRole(context.Background(), CreateRoleRequest{
		Name: "Editor",
	})
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestUpdateRoleAppliesPartialChanges(t *testing.T) {
	repo := &fakeRepo{
		byID: map[string]*Role{
			"r1": {ID: "r1", Name: "Editor", Description: "old"},
		},
	}
	svc := NewService(repo, &fakePermissionNamer{})

	newDesc := "Can edit and publish"
	role, err := svc.UpdateRole(context.Background(), "r1", UpdateRoleRequest{
		Description: &newDesc,
	})
	require.NoError(t, err)

	assert.Equal(t, "Editor", role.Name)
	assert.Equal(t, newDesc, role.Description)
}

func TestUpdateRoleMissing(t *testing.T) {
	svc := NewService(&fakeRepo{byID: map[string]*Role{}}, &fakePermissionNamer{})

	_, err := svc.UpdateRole(context.Background(), "missing", UpdateRoleRequest{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetRoleResponseIncludesPermissions(t *testing.T) {
	repo := &fakeRepo{
		byID: map[string]*Role{
			"r1": {ID: "r1", Name: "Editor"},
		},
	}
	svc := NewService(repo, &fakePermissionNamer{
		names: []string{"articles.edit", "articles.publish"},
	})

	resp, err := svc.GetRoleResponse(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, "Editor", resp.Name)
	assert.Equal(
		t,
		[]string{"articles.edit", "articles.publish"},
		resp.Permissions,
	)
}

// AngelaMos | 2026
// assignments_test.go

package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeep/internal/core"
)

type fakeAssignmentStore struct {
	Store

	assignRolesErr error
	gotUserID      string
	gotRoleIDs     []string

	assignPermsErr error
	gotRoleID      string
	gotPermIDs     []string
}

func (f *fakeAssignmentStore) AssignRolesToUser(
	ctx context.Context,
	userID string,
	roleIDs []string,
) error {
	f.gotUserID = userID
	f.gotRoleIDs = roleIDs
	return f.assignRolesErr
}

func (f *fakeAssignmentStore) AssignPermissionsToRole(
	ctx context.Context,
	roleID string,
	permissionIDs []string,
) error {
	f.gotRoleID = roleID
	f.gotPermIDs = permissionIDs
	return f.assignPermsErr
}

func TestAssignRolesToUserDeduplicatesBatch(t *testing.T) {
	store := &fakeAssignmentStore{}
	a := NewAssignments(store)

	err := a.AssignRolesToUser(
		context.Background(),
		"user-1",
		[]string{"r1", "r2", "r1", "r2", "r3"},
	)
	require.NoError(t, err)

	assert.Equal(t, "user-1", store.gotUserID)
	assert.Equal(t, []string{"r1", "r2", "r3"}, store.gotRoleIDs)
}

func TestAssignRolesToUserRejectsEmptyBatch(t *testing.T) {
	a := NewAssignments(&fakeAssignmentStore{})

	err := a.AssignRolesToUser(context.Background(), "user-1", nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestAssignRolesToUserPassesThroughStoreErrors(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
	}{
		{name: "missing role", storeErr: core.ErrNotFound},
		{name: "duplicate edge", storeErr: core.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssignments(&fakeAssignmentStore{
				assignRolesErr: tt.storeErr,
			})

			err := a.AssignRolesToUser(
				context.Background(),
				"user-1",
				[]string{"r1"},
			)
			assert.ErrorIs(t, err, tt.storeErr)
		})
	}
}

func TestAssignPermissionsToRole(t *testing.T) {
	store := &fakeAssignmentStore{}
	a := NewAssignments(store)

	err := a.AssignPermissionsToRole(
		context.Background(),
		"role-1",
		[]string{"p1", "p1", "p2"},
	)
	require.NoError(t, err)

	assert.Equal(t, "role-1", store.gotRoleID)
	assert.Equal(t, []string{"p1", "p2"}, store.gotPermIDs)

	err = a.AssignPermissionsToRole(context.Background(), "role-1", nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

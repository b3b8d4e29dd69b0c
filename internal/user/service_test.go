// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeep/internal/auth"
	"github.com/angelamos/gatekeep/internal/core"
)

type fakeRepo struct {
	Repository

	byID    map[string]*User
	created *User

	suspendExists  bool
	suspendChanged bool
}

func (f *fakeRepo) Create(ctx context.Context, u *User) error {
	f.created = u
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeRepo) Update(ctx context.Context, u *User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeRepo) Exists(ctx context.Context, id string) (bool, error) {
	return f.suspendExists, nil
}

func (f *fakeRepo) SetSuspended(
	ctx context.Context,
	id string,
	suspended bool,
) (bool, error) {
	return f.suspendChanged, nil
}

type fakeRoleNamer struct {
	names []string
}

func (f *fakeRoleNamer) RoleNamesForUser(
	ctx context.Context,
	userID string,
) ([]string, error) {
	return f.names, nil
}

func TestCreateAccountNormalizesEmail(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeRoleNamer{})

	acc, err := svc.CreateAccount(context.Background(), auth.NewAccount{
		ID:           "u1",
		Email:        "Ada@Example.COM",
		Name:         "Ada",
		PasswordHash: "hash",
		Tier:         TierStandard,
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", acc.Email)
	require.NotNil(t, repo.created)
	assert.Equal(t, "ada@example.com", repo.created.Email)
}

func TestToAccountCarriesSuspension(t *testing.T) {
	deleted := time.Now()
	code := "482910"
	u := &User{
		ID:         "u1",
		Email:      "ada@example.com",
		Name:       "Ada",
		Verified:   true,
		MFAEnabled: true,
		MFACode:    &code,
		DeletedAt:  &deleted,
	}

	acc := toAccount(u)

	assert.True(t, acc.Suspended)
	assert.True(t, acc.MFAEnabled)
	require.NotNil(t, acc.MFACode)
	assert.Equal(t, code, *acc.MFACode)
}

func TestUpdateUserAppliesPartialChanges(t *testing.T) {
	repo := &fakeRepo{
		byID: map[string]*User{
			"u1": {ID: "u1", Name: "Ada", Gender: "f"},
		},
	}
	svc := NewService(repo, &fakeRoleNamer{})

	phone := "+15550001111"
	u, err := svc.UpdateUser(context.Background(), "u1", UpdateUserRequest{
		Phone: &phone,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", u.Name)
	require.NotNil(t, u.Phone)
	assert.Equal(t, phone, *u.Phone)
}

func TestGetUserResponseIncludesRoles(t *testing.T) {
	repo := &fakeRepo{
		byID: map[string]*User{
			"u1": {ID: "u1", Email: "ada@example.com", Name: "Ada"},
		},
	}
	svc := NewService(repo, &fakeRoleNamer{names: []string{"Editor"}})

	resp, err := svc.GetUserResponse(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"Editor"}, resp.Roles)
}

func TestRestoreUserNotSuspendedIsConflict(t *testing.T) {
	repo := &fakeRepo{suspendExists: true, suspendChanged: false}
	svc := NewService(repo, &fakeRoleNamer{})

	err := svc.RestoreUser(context.Background(), "u1")
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestGetMeRequiresAuthentication(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeRoleNamer{})

	_, err := svc.GetMe(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

// AngelaMos | 2026
// evaluator_test.go

package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGraph maps userID -> held role names and userID -> granted
// permission names.
type fakeGraph struct {
	roles       map[string]map[string]bool
	permissions map[string]map[string]bool
	err         error
}

func (f *fakeGraph) UserHasRole(
	ctx context.Context,
	userID, roleName string,
) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.roles[userID][roleName], nil
}

func (f *fakeGraph) UserHasPermission(
	ctx context.Context,
	userID, permissionName string,
) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.permissions[userID][permissionName], nil
}

func TestEvaluatorHasRole(t *testing.T) {
	graph := &fakeGraph{
		roles: map[string]map[string]bool{
			"alice": {"Editor": true},
		},
	}
	e := NewEvaluator(graph)

	tests := []struct {
		name   string
		userID string
		role   string
		want   bool
	}{
		{name: "held role", userID: "alice", role: "Editor", want: true},
		{name: "role not held", userID: "alice", role: "Auditor", want: false},
		{name: "unknown user is denied", userID: "nobody", role: "Editor"},
		{name: "empty user id is denied", userID: "", role: "Editor"},
		{name: "empty role name is denied", userID: "alice", role: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.HasRole(context.Background(), tt.userID, tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluatorHasPermission(t *testing.T) {
	graph := &fakeGraph{
		roles: map[string]map[string]bool{
			"root": {"Super Admin": true},
		},
		permissions: map[string]map[string]bool{
			"alice": {"articles.edit": true},
		},
	}
	e := NewEvaluator(graph)

	tests := []struct {
		name   string
		userID string
		perm   string
		want   bool
	}{
		{
			name:   "granted through a role",
			userID: "alice",
			perm:   "articles.edit",
			want:   true,
		},
		{
			// Holding a role, even an administrative one, grants only the
			// permissions in that role's set. Role overrides live at the
			// guard, not here.
			name:   "role membership alone grants nothing",
			userID: "root",
			perm:   "users.manage",
		},
		{name: "not granted", userID: "alice", perm: "users.manage"},
		{name: "unknown user is denied", userID: "nobody", perm: "articles.edit"},
		{name: "empty permission is denied", userID: "alice", perm: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.HasPermission(
				context.Background(),
				tt.userID,
				tt.perm,
			)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluatorPropagatesGraphErrors(t *testing.T) {
	graphErr := errors.New("connection reset")
	e := NewEvaluator(&fakeGraph{err: graphErr})

	_, err := e.HasRole(context.Background(), "alice", "Editor")
	assert.ErrorIs(t, err, graphErr)

	_, err = e.HasPermission(context.Background(), "alice", "articles.edit")
	assert.ErrorIs(t, err, graphErr)
}

// AngelaMos | 2026
// assignments.go

package rbac

import (
	"context"
	"fmt"

	"github.com/angelamos/gatekeep/internal/core"
)

// Assignments is the write side of the graph, exposed to the user and role
// handlers through their own narrow interfaces.
type Assignments struct {
	store Store
}

func NewAssignments(store Store) *Assignments {
	return &Assignments{store: store}
}

func (a *Assignments) AssignRolesToUser(
	ctx context.Context,
	userID string,
	roleIDs []string,
) error {
	roleIDs = dedupe(roleIDs)
	if len(roleIDs) == 0 {
		return fmt.Errorf("assign roles: empty batch: %w", core.ErrInvalidInput)
	}

	return a.store.AssignRolesToUser(ctx, userID, roleIDs)
}

func (a *Assignments) UnassignRoleFromUser(
	ctx context.Context,
	userID, roleID string,
) error {
	return a.store.UnassignRoleFromUser(ctx, userID, roleID)
}

func (a *Assignments) AssignPermissionsToRole(
	ctx context.Context,
	roleID string,
	permissionIDs []string,
) error {
	permissionIDs = dedupe(permissionIDs)
	if len(permissionIDs) == 0 {
		return fmt.Errorf(
			"assign permissions: empty batch: %w",
			core.ErrInvalidInput,
		)
	}

	return a.store.AssignPermissionsToRole(ctx, roleID, permissionIDs)
}

func (a *Assignments) UnassignPermissionFromRole(
	ctx context.Context,
	roleID, permissionID string,
) error {
	return a.store.UnassignPermissionFromRole(ctx, roleID, permissionID)
}

// A repeated ID inside one batch is a client slip, not a conflict with
// existing state; collapse it instead of failing the batch.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

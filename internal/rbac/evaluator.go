// AngelaMos | 2026
// evaluator.go

package rbac

import (
	"context"
	"fmt"

	"github.com/angelamos/gatekeep/internal/middleware"
)

// GraphReader is the read side of the assignment graph.
type GraphReader interface {
	UserHasRole(ctx context.Context, userID, roleName string) (bool, error)
	UserHasPermission(
		ctx context.Context,
		userID, permissionName string,
	) (bool, error)
}

// Evaluator answers authorization questions by re-reading the graph on
// every call, so assignment changes apply immediately to live tokens.
// Unknown users are denied, not errored: a decision is always produced.
type Evaluator struct {
	graph GraphReader
}

func NewEvaluator(graph GraphReader) *Evaluator {
	return &Evaluator{graph: graph}
}

func (e *Evaluator) HasRole(
	ctx context.Context,
	userID, roleName string,
) (bool, error) {
	if userID == "" || roleName == "" {
		return false, nil
	}

	has, err := e.graph.UserHasRole(ctx, userID, roleName)
	if err != nil {
		return false, fmt.Errorf("evaluate role: %w", err)
	}

	return has, nil
}

// HasPermission grants iff any of the user's active roles carries the
// permission. Role overrides (the configured admin role) are composed at
// the guard, never inside the evaluation itself.
func (e *Evaluator) HasPermission(
	ctx context.Context,
	userID, permissionName string,
) (bool, error) {
	if userID == "" || permissionName == "" {
		return false, nil
	}

	has, err := e.graph.UserHasPermission(ctx, userID, permissionName)
	if err != nil {
		return false, fmt.Errorf("evaluate permission: %w", err)
	}

	return has, nil
}

var _ middleware.Authorizer = (*Evaluator)(nil)

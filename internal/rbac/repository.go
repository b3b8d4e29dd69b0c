// AngelaMos | 2026
// repository.go

package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/angelamos/gatekeep/internal/core"
)

// Store is the assignment graph: user-role and role-permission edges plus
// the reads the evaluator needs. All reads walk only non-suspended rows.
type Store interface {
	UserHasRole(ctx context.Context, userID, roleName string) (bool, error)
	UserHasPermission(
		ctx context.Context,
		userID, permissionName string,
	) (bool, error)
	RoleNamesForUser(ctx context.Context, userID string) ([]string, error)
	PermissionNamesForRole(
		ctx context.Context,
		roleID string,
	) ([]string, error)

	AssignRolesToUser(
		ctx context.Context,
		userID string,
		roleIDs []string,
	) error
	UnassignRoleFromUser(ctx context.Context, userID, roleID string) error
	AssignPermissionsToRole(
		ctx context.Context,
		roleID string,
		permissionIDs []string,
	) error
	UnassignPermissionFromRole(
		ctx context.Context,
		roleID, permissionID string,
	) error
}

type store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

func (s *store) UserHasRole(
	ctx context.Context,
	userID, roleName string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM user_roles ur
			JOIN users u ON u.id = ur.user_id AND u.deleted_at IS NULL
			JOIN roles r ON r.id = ur.role_id AND r.deleted_at IS NULL
			WHERE ur.user_id = $1 AND r.name = $2
		)`

	var has bool
	if err := s.db.GetContext(ctx, &has, query, userID, roleName); err != nil {
		return false, fmt.Errorf("check user role: %w", err)
	}

	return has, nil
}

func (s *store) UserHasPermission(
	ctx context.Context,
	userID, permissionName string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM user_roles ur
			JOIN users u ON u.id = ur.user_id AND u.deleted_at IS NULL
			JOIN roles r ON r.id = ur.role_id AND r.deleted_at IS NULL
			JOIN role_permissions rp ON rp.role_id = r.id
			JOIN permissions p
				ON p.id = rp.permission_id AND p.deleted_at IS NULL
			WHERE ur.user_id = $1 AND p.name = $2
		)`

	var has bool
	err := s.db.GetContext(ctx, &has, query, userID, permissionName)
	if err != nil {
		return false, fmt.Errorf("check user permission: %w", err)
	}

	return has, nil
}

func (s *store) RoleNamesForUser(
	ctx context.Context,
	userID string,
) ([]string, error) {
	query := `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id AND r.deleted_at IS NULL
		WHERE ur.user_id = $1
		ORDER BY r.name ASC`

	names := []string{}
	if err := s.db.SelectContext(ctx, &names, query, userID); err != nil {
		return nil, fmt.Errorf("role names for user: %w", err)
	}

	return names, nil
}

func (s *store) PermissionNamesForRole(
	ctx context.Context,
	roleID string,
) ([]string, error) {
	query := `
		SELECT p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id AND p.deleted_at IS NULL
		WHERE rp.role_id = $1
		ORDER BY p.name ASC`

	names := []string{}
	if err := s.db.SelectContext(ctx, &names, query, roleID); err != nil {
		return nil, fmt.Errorf("permission names for role: %w", err)
	}

	return names, nil
}

// AssignRolesToUser adds edges inside one transaction: either every
// requested role is attached or none are. A missing user or role rolls the
// batch back with NotFound; an existing edge rolls it back with Conflict.
func (s *store) AssignRolesToUser(
	ctx context.Context,
	userID string,
	roleIDs []string,
) error {
	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := rowExists(ctx, tx, "users", userID); err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}

		for _, roleID := range roleIDs {
			if err := rowExists(ctx, tx, "roles", roleID); err != nil {
				return fmt.Errorf("role %s: %w", roleID, err)
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO user_roles (user_id, role_id)
				VALUES ($1, $2)`,
				userID, roleID,
			)
			if err != nil {
				if isDuplicateKeyError(err) {
					return fmt.Errorf(
						"role %s already assigned: %w",
						roleID,
						core.ErrConflict,
					)
				}
				return fmt.Errorf("insert user role: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("assign roles to user: %w", err)
	}

	return nil
}

func (s *store) UnassignRoleFromUser(
	ctx context.Context,
	userID, roleID string,
) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role_id = $2`,
		userID, roleID,
	)
	if err != nil {
		return fmt.Errorf("unassign role from user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unassign role from user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("unassign role from user: %w", core.ErrNotFound)
	}

	return nil
}

func (s *store) AssignPermissionsToRole(
	ctx context.Context,
	roleID string,
	permissionIDs []string,
) error {
	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := rowExists(ctx, tx, "roles", roleID); err != nil {
			return fmt.Errorf("role %s: %w", roleID, err)
		}

		for _, permissionID := range permissionIDs {
			if err := rowExists(ctx, tx, "permissions", permissionID); err != nil {
				return fmt.Errorf("permission %s: %w", permissionID, err)
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				VALUES ($1, $2)`,
				roleID, permissionID,
			)
			if err != nil {
				if isDuplicateKeyError(err) {
					return fmt.Errorf(
						"permission %s already assigned: %w",
						permissionID,
						core.ErrConflict,
					)
				}
				return fmt.Errorf("insert role permission: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("assign permissions to role: %w", err)
	}

	return nil
}

func (s *store) UnassignPermissionFromRole(
	ctx context.Context,
	roleID, permissionID string,
) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM role_permissions
		WHERE role_id = $1 AND permission_id = $2`,
		roleID, permissionID,
	)
	if err != nil {
		return fmt.Errorf("unassign permission from role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unassign permission from role: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf(
			"unassign permission from role: %w",
			core.ErrNotFound,
		)
	}

	return nil
}

// Suspended rows still anchor graph edges, so existence checks here ignore
// deleted_at. The evaluator filters suspension at read time instead.
func rowExists(
	ctx context.Context,
	tx *sqlx.Tx,
	table, id string,
) error {
	query := fmt.Sprintf(
		"SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)",
		table,
	)

	var exists bool
	if err := tx.GetContext(ctx, &exists, query, id); err != nil {
		return fmt.Errorf("check %s exists: %w", table, err)
	}

	if !exists {
		return core.ErrNotFound
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// AngelaMos | 2026
// repository.go

package permission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/gatekeep/internal/core"
)

const permissionColumns = `
	id, name, description, created_at, updated_at, deleted_at`

type Repository interface {
	Create(ctx context.Context, perm *Permission) error
	GetByID(ctx context.Context, id string) (*Permission, error)
	GetByName(ctx context.Context, name string) (*Permission, error)
	Update(ctx context.Context, perm *Permission) error
	List(
		ctx context.Context,
		params ListPermissionsParams,
	) ([]Permission, int, error)

	Exists(ctx context.Context, id string) (bool, error)
	SetSuspended(ctx context.Context, id string, suspended bool) (bool, error)
	HardDelete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, perm *Permission) error {
	query := `
		INSERT INTO permissions (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, perm, query,
		perm.ID,
		perm.Name,
		perm.Description,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create permission: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create permission: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Permission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM permissions
		WHERE id = $1 AND deleted_at IS NULL`, permissionColumns)

	return r.getOne(ctx, query, id)
}

func (r *repository) GetByName(
	ctx context.Context,
	name string,
) (*Permission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM permissions
		WHERE name = $1 AND deleted_at IS NULL`, permissionColumns)

	return r.getOne(ctx, query, name)
}

func (r *repository) getOne(
	ctx context.Context,
	query string,
	arg any,
) (*Permission, error) {
	var perm Permission
	err := r.db.GetContext(ctx, &perm, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get permission: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get permission: %w", err)
	}

	return &perm, nil
}

func (r *repository) Update(ctx context.Context, perm *Permission) error {
	query := `
		UPDATE permissions
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &perm.UpdatedAt, query,
		perm.ID,
		perm.Name,
		perm.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update permission: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update permission: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update permission: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListPermissionsParams,
) ([]Permission, int, error) {
	params.Normalize()

	conditions := []string{"deleted_at IS NULL"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"name ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM permissions WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count permissions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM permissions
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		permissionColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var perms []Permission
	if err := r.db.SelectContext(ctx, &perms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list permissions: %w", err)
	}

	return perms, total, nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM permissions WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check permission exists: %w", err)
	}

	return exists, nil
}

func (r *repository) SetSuspended(
	ctx context.Context,
	id string,
	suspended bool,
) (bool, error) {
	var query string
	if suspended {
		query = `
			UPDATE permissions
			SET deleted_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL`
	} else {
		query = `
			UPDATE permissions
			SET deleted_at = NULL, updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NOT NULL`
	}

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("set permission suspended: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set permission suspended: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) HardDelete(ctx context.Context, id string) error {
	query := `DELETE FROM permissions WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("hard delete permission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("hard delete permission: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("hard delete permission: %w", core.ErrNotFound)
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

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

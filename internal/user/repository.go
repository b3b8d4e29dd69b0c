// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/gatekeep/internal/core"
)

const userColumns = `
	id, email, phone, name, gender, password_hash, tier, verified,
	verification_token, mfa_enabled, mfa_code, mfa_expires_at,
	created_at, updated_at, deleted_at`

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Auth-scoped lookups do not filter suspended rows: the orchestrator
	// must distinguish "suspended" from "no such account".
	GetForAuthByEmail(ctx context.Context, email string) (*User, error)
	GetForAuthByPhone(ctx context.Context, phone string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	GetByOTPCode(ctx context.Context, code string) (*User, error)

	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	MarkVerified(ctx context.Context, id string) error
	SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, id string) error
	SetMFAEnabled(ctx context.Context, id string, enabled bool) error

	List(ctx context.Context, params ListUsersParams) ([]User, int, error)

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

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, phone, name, gender, password_hash, tier,
			verified, verification_token, mfa_enabled
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Email,
		user.Phone,
		user.Name,
		user.Gender,
		user.PasswordHash,
		user.Tier,
		user.Verified,
		user.VerificationToken,
		user.MFAEnabled,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE id = $1 AND deleted_at IS NULL`, userColumns)

	return r.getOne(ctx, query, id)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE email = $1 AND deleted_at IS NULL`, userColumns)

	return r.getOne(ctx, query, email)
}

func (r *repository) GetForAuthByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users WHERE email = $1`, userColumns)

	return r.getOne(ctx, query, email)
}

func (r *repository) GetForAuthByPhone(
	ctx context.Context,
	phone string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users WHERE phone = $1`, userColumns)

	return r.getOne(ctx, query, phone)
}

func (r *repository) GetByVerificationToken(
	ctx context.Context,
	token string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users WHERE verification_token = $1`, userColumns)

	return r.getOne(ctx, query, token)
}

func (r *repository) GetByOTPCode(
	ctx context.Context,
	code string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users WHERE mfa_code = $1`, userColumns)

	return r.getOne(ctx, query, code)
}

func (r *repository) getOne(
	ctx context.Context,
	query string,
	arg any,
) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, gender = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Phone,
		user.Gender,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execExpectingRow(ctx, "update password", query, id, passwordHash)
}

func (r *repository) MarkVerified(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET verified = true, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "mark verified", query, id)
}

func (r *repository) SetOTP(
	ctx context.Context,
	id, code string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET mfa_code = $2, mfa_expires_at = $3, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "set otp", query, id, code, expiresAt)
}

func (r *repository) ClearOTP(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET mfa_code = NULL, mfa_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "clear otp", query, id)
}

func (r *repository) SetMFAEnabled(
	ctx context.Context,
	id string,
	enabled bool,
) error {
	query := `
		UPDATE users
		SET mfa_enabled = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execExpectingRow(ctx, "set mfa enabled", query, id, enabled)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	switch params.Suspended {
	case SuspendedInclude:
	case SuspendedOnly:
		conditions = append(conditions, "deleted_at IS NOT NULL")
	default:
		conditions = append(conditions, "deleted_at IS NULL")
	}

	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
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
			UPDATE users
			SET deleted_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL`
	} else {
		query = `
			UPDATE users
			SET deleted_at = NULL, updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NOT NULL`
	}

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("set user suspended: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set user suspended: %w", err)
	}

	return rows > 0, nil
}

// HardDelete physically removes the row. Compatibility path only; normal
// flows go through SetSuspended.
func (r *repository) HardDelete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	return r.execExpectingRow(ctx, "hard delete user", query, id)
}

func (r *repository) execExpectingRow(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
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

// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelamos/gatekeep/internal/auth"
	"github.com/angelamos/gatekeep/internal/core"
	"github.com/angelamos/gatekeep/internal/lifecycle"
)

// RoleNamer resolves the role names currently assigned to a user. Wired to
// the rbac repository; kept as an interface so user does not depend on it.
type RoleNamer interface {
	RoleNamesForUser(ctx context.Context, userID string) ([]string, error)
}

type Service struct {
	repo      Repository
	roles     RoleNamer
	lifecycle *lifecycle.Manager
}

func NewService(repo Repository, roles RoleNamer) *Service {
	return &Service{
		repo:      repo,
		roles:     roles,
		lifecycle: lifecycle.NewManager(repo, "user"),
	}
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetUserResponse assembles the API view of a user, including the names of
// the roles currently assigned through the graph.
func (s *Service) GetUserResponse(
	ctx context.Context,
	id string,
) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)

	roleNames, err := s.roles.RoleNamesForUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	resp.Roles = roleNames

	return &resp, nil
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Gender != nil {
		u.Gender = *req.Gender
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) SuspendUser(ctx context.Context, id string) error {
	return s.lifecycle.Suspend(ctx, id)
}

func (s *Service) RestoreUser(ctx context.Context, id string) error {
	return s.lifecycle.Restore(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.HardDelete(ctx, id)
}

func (s *Service) SetMFAEnabled(
	ctx context.Context,
	id string,
	enabled bool,
) error {
	return s.repo.SetMFAEnabled(ctx, id, enabled)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, req)
}

// auth.UserDirectory implementation. The auth package sees accounts, not
// full user rows.

func (s *Service) FindForAuthByEmail(
	ctx context.Context,
	email string,
) (*auth.Account, error) {
	u, err := s.repo.GetForAuthByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

func (s *Service) FindForAuthByPhone(
	ctx context.Context,
	phone string,
) (*auth.Account, error) {
	u, err := s.repo.GetForAuthByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

func (s *Service) FindByID(
	ctx context.Context,
	id string,
) (*auth.Account, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

func (s *Service) FindByVerificationToken(
	ctx context.Context,
	token string,
) (*auth.Account, error) {
	u, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

func (s *Service) FindByOTPCode(
	ctx context.Context,
	code string,
) (*auth.Account, error) {
	u, err := s.repo.GetByOTPCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

func (s *Service) CreateAccount(
	ctx context.Context,
	acc auth.NewAccount,
) (*auth.Account, error) {
	u := &User{
		ID:                acc.ID,
		Email:             strings.ToLower(acc.Email),
		Phone:             acc.Phone,
		Name:              acc.Name,
		Gender:            acc.Gender,
		PasswordHash:      acc.PasswordHash,
		Tier:              acc.Tier,
		Verified:          acc.Verified,
		VerificationToken: acc.VerificationToken,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

func (s *Service) MarkVerified(ctx context.Context, id string) error {
	return s.repo.MarkVerified(ctx, id)
}

func (s *Service) SetOTP(
	ctx context.Context,
	id, code string,
	expiresAt time.Time,
) error {
	return s.repo.SetOTP(ctx, id, code, expiresAt)
}

func (s *Service) ClearOTP(ctx context.Context, id string) error {
	return s.repo.ClearOTP(ctx, id)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func toAccount(u *User) *auth.Account {
	return &auth.Account{
		ID:           u.ID,
		Email:        u.Email,
		Phone:        u.Phone,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Tier:         u.Tier,
		Verified:     u.Verified,
		MFAEnabled:   u.MFAEnabled,
		MFACode:      u.MFACode,
		MFAExpiresAt: u.MFAExpiresAt,
		Suspended:    u.IsSuspended(),
	}
}

var _ auth.UserDirectory = (*Service)(nil)

// AngelaMos | 2026
// service.go

package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/gatekeep/internal/core"
	"github.com/angelamos/gatekeep/internal/lifecycle"
)

// PermissionNamer resolves the permission names currently granted to a
// role. Wired to the rbac repository.
type PermissionNamer interface {
	PermissionNamesForRole(
		ctx context.Context,
		roleID string,
	) ([]string, error)
}

type Service struct {
	repo        Repository
	permissions PermissionNamer
	lifecycle   *lifecycle.Manager
}

func NewService(repo Repository, permissions PermissionNamer) *Service {
	return &Service{
		repo:        repo,
		permissions: permissions,
		lifecycle:   lifecycle.NewManager(repo, "role"),
	}
}

func (s *Service) CreateRole(
	ctx context.Context,
	req CreateRoleRequest,
) (*Role, error) {
	role := &Role{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, role); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf(
				"create role %q: %w",
				req.Name,
				core.ErrConflict,
			)
		}
		return nil, err
	}

	return role, nil
}

func (s *Service) GetRole(ctx context.Context, id string) (*Role, error) {
	return s.repo.GetByID(ctx, id)
}

// GetRoleResponse assembles the API view including granted permission names.
func (s *Service) GetRoleResponse(
	ctx context.Context,
	id string,
) (*RoleResponse, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToRoleResponse(role)

	names, err := s.permissions.PermissionNamesForRole(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}
	resp.Permissions = names

	return &resp, nil
}

func (s *Service) UpdateRole(
	ctx context.Context,
	id string,
	req UpdateRoleRequest,
) (*Role, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}

	if err := s.repo.Update(ctx, role); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf(
				"update role %q: %w",
				role.Name,
				core.ErrConflict,
			)
		}
		return nil, err
	}

	return role, nil
}

func (s *Service) ListRoles(
	ctx context.Context,
	params ListRolesParams,
) ([]Role, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) SuspendRole(ctx context.Context, id string) error {
	return s.lifecycle.Suspend(ctx, id)
}

func (s *Service) RestoreRole(ctx context.Context, id string) error {
	return s.lifecycle.Restore(ctx, id)
}

func (s *Service) DeleteRole(ctx context.Context, id string) error {
	return s.repo.HardDelete(ctx, id)
}

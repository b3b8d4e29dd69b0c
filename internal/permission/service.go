// AngelaMos | 2026
// service.go

package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/gatekeep/internal/core"
	"github.com/angelamos/gatekeep/internal/lifecycle"
)

type Service struct {
	repo      Repository
	lifecycle *lifecycle.Manager
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:      repo,
		lifecycle: lifecycle.NewManager(repo, "permission"),
	}
}

func (s *Service) CreatePermission(
	ctx context.Context,
	req CreatePermissionRequest,
) (*Permission, error) {
	perm := &Permission{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, perm); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf(
				"create permission %q: %w",
				req.Name,
				core.ErrConflict,
			)
		}
		return nil, err
	}

	return perm, nil
}

func (s *Service) GetPermission(
	ctx context.Context,
	id string,
) (*Permission, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdatePermission(
	ctx context.Context,
	id string,
	req UpdatePermissionRequest,
) (*Permission, error) {
	perm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		perm.Name = *req.Name
	}
	if req.Description != nil {
		perm.Description = *req.Description
	}

	if err := s.repo.Update(ctx, perm); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf(
				"update permission %q: %w",
				perm.Name,
				core.ErrConflict,
			)
		}
		return nil, err
	}

	return perm, nil
}

func (s *Service) ListPermissions(
	ctx context.Context,
	params ListPermissionsParams,
) ([]Permission, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) SuspendPermission(ctx context.Context, id string) error {
	return s.lifecycle.Suspend(ctx, id)
}

func (s *Service) RestorePermission(ctx context.Context, id string) error {
	return s.lifecycle.Restore(ctx, id)
}

func (s *Service) DeletePermission(ctx context.Context, id string) error {
	return s.repo.HardDelete(ctx, id)
}

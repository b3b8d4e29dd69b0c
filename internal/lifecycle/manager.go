// AngelaMos | 2026
// manager.go

package lifecycle

import (
	"context"
	"fmt"

	"github.com/angelamos/gatekeep/internal/core"
)

// Store is the minimal surface a suspendable entity's repository exposes.
// SetSuspended reports whether a row actually changed state, which lets the
// manager tell "already there" apart from "missing" with one extra lookup.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	SetSuspended(
		ctx context.Context,
		id string,
		suspended bool,
	) (bool, error)
}

// Manager implements suspend and restore uniformly for users, roles and
// permissions. Suspension is reversible soft deletion, never a row delete.
type Manager struct {
	store    Store
	resource string
}

func NewManager(store Store, resource string) *Manager {
	return &Manager{store: store, resource: resource}
}

// Suspend soft-deletes the entity. Suspending an already suspended entity
// is a no-op, not an error.
func (m *Manager) Suspend(ctx context.Context, id string) error {
	changed, err := m.store.SetSuspended(ctx, id, true)
	if err != nil {
		return fmt.Errorf("suspend %s: %w", m.resource, err)
	}

	if changed {
		return nil
	}

	exists, err := m.store.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("suspend %s: %w", m.resource, err)
	}
	if !exists {
		return fmt.Errorf("suspend %s: %w", m.resource, core.ErrNotFound)
	}

	return nil
}

// Restore reverses a suspension. Restoring an active entity is a conflict:
// the caller asked for a transition that did not happen.
func (m *Manager) Restore(ctx context.Context, id string) error {
	changed, err := m.store.SetSuspended(ctx, id, false)
	if err != nil {
		return fmt.Errorf("restore %s: %w", m.resource, err)
	}

	if changed {
		return nil
	}

	exists, err := m.store.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("restore %s: %w", m.resource, err)
	}
	if !exists {
		return fmt.Errorf("restore %s: %w", m.resource, core.ErrNotFound)
	}

	return fmt.Errorf("restore %s: not suspended: %w", m.resource, core.ErrConflict)
}

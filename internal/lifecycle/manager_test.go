// AngelaMos | 2026
// manager_test.go

package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeep/internal/core"
)

type fakeStore struct {
	exists  bool
	changed bool
	err     error

	lastID        string
	lastSuspended bool
}

func (f *fakeStore) Exists(ctx context.Context, id string) (bool, error) {
	return f.exists, f.err
}

func (f *fakeStore) SetSuspended(
	ctx context.Context,
	id string,
	suspended bool,
) (bool, error) {
	f.lastID = id
	f.lastSuspended = suspended
	return f.changed, f.err
}

func TestManagerSuspend(t *testing.T) {
	tests := []struct {
		name    string
		store   *fakeStore
		wantErr error
	}{
		{
			name:  "active entity is suspended",
			store: &fakeStore{changed: true, exists: true},
		},
		{
			name:  "already suspended is a no-op",
			store: &fakeStore{changed: false, exists: true},
		},
		{
			name:    "missing entity",
			store:   &fakeStore{changed: false, exists: false},
			wantErr: core.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.store, "widget")

			err := m.Suspend(context.Background(), "id-1")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "id-1", tt.store.lastID)
			assert.True(t, tt.store.lastSuspended)
		})
	}
}

func TestManagerRestore(t *testing.T) {
	tests := []struct {
		name    string
		store   *fakeStore
		wantErr error
	}{
		{
			name:  "suspended entity is restored",
			store: &fakeStore{changed: true, exists: true},
		},
		{
			name:    "active entity is a conflict",
			store:   &fakeStore{changed: false, exists: true},
			wantErr: core.ErrConflict,
		},
		{
			name:    "missing entity",
			store:   &fakeStore{changed: false, exists: false},
			wantErr: core.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.store, "widget")

			err := m.Restore(context.Background(), "id-1")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.False(t, tt.store.lastSuspended)
		})
	}
}

func TestManagerPropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection reset")
	m := NewManager(&fakeStore{err: storeErr}, "widget")

	err := m.Suspend(context.Background(), "id-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "widget")
}

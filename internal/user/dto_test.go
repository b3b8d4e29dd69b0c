// AngelaMos | 2026
// dto_test.go

package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListUsersParamsNormalize(t *testing.T) {
	tests := []struct {
		name          string
		params        ListUsersParams
		wantPage      int
		wantPageSize  int
		wantSuspended string
	}{
		{
			name:          "defaults",
			params:        ListUsersParams{},
			wantPage:      1,
			wantPageSize:  20,
			wantSuspended: SuspendedExclude,
		},
		{
			name:          "page size clamped",
			params:        ListUsersParams{Page: 3, PageSize: 500},
			wantPage:      3,
			wantPageSize:  100,
			wantSuspended: SuspendedExclude,
		},
		{
			name:          "include suspended",
			params:        ListUsersParams{Suspended: SuspendedInclude},
			wantPage:      1,
			wantPageSize:  20,
			wantSuspended: SuspendedInclude,
		},
		{
			name:          "suspended only",
			params:        ListUsersParams{Suspended: SuspendedOnly},
			wantPage:      1,
			wantPageSize:  20,
			wantSuspended: SuspendedOnly,
		},
		{
			name:          "unknown filter falls back to active accounts",
			params:        ListUsersParams{Suspended: "everything"},
			wantPage:      1,
			wantPageSize:  20,
			wantSuspended: SuspendedExclude,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Normalize()
			assert.Equal(t, tt.wantPage, tt.params.Page)
			assert.Equal(t, tt.wantPageSize, tt.params.PageSize)
			assert.Equal(t, tt.wantSuspended, tt.params.Suspended)
		})
	}
}

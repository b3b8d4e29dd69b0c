// AngelaMos | 2026
// entity.go

package role

import (
	"time"
)

// Role names are unique among active roles. "Super Admin" is not special
// here; which role bypasses permission checks is configuration.
type Role struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func (r *Role) IsSuspended() bool {
	return r.DeletedAt != nil
}

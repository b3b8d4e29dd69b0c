// AngelaMos | 2026
// entity.go

package permission

import (
	"time"
)

// Permission names are unique among active permissions and follow a
// resource.action convention, e.g. "users.manage".
type Permission struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func (p *Permission) IsSuspended() bool {
	return p.DeletedAt != nil
}

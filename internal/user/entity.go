// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                string     `db:"id"`
	Email             string     `db:"email"`
	Phone             *string    `db:"phone"`
	Name              string     `db:"name"`
	Gender            string     `db:"gender"`
	PasswordHash      string     `db:"password_hash"`
	Tier              int        `db:"tier"`
	Verified          bool       `db:"verified"`
	VerificationToken string     `db:"verification_token"`
	MFAEnabled        bool       `db:"mfa_enabled"`
	MFACode           *string    `db:"mfa_code"`
	MFAExpiresAt      *time.Time `db:"mfa_expires_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	DeletedAt         *time.Time `db:"deleted_at"`
}

func (u *User) IsSuspended() bool {
	return u.DeletedAt != nil
}

// Legacy integer tiers, kept as a migration shim for rows predating the role
// graph. Nothing makes authorization decisions on these values.
const (
	TierSuperAdmin = 0
	TierVendor     = 1
	TierStandard   = 2
)

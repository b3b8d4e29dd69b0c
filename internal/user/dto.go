// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty"   validate:"omitempty,min=1,max=100"`
	Phone  *string `json:"phone,omitempty"  validate:"omitempty,e164"`
	Gender *string `json:"gender,omitempty" validate:"omitempty,oneof=m f o"`
}

type UpdateMFARequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type AssignRolesRequest struct {
	RoleIDs []string `json:"role_ids" validate:"required,min=1,dive,uuid4"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Name       string    `json:"name"`
	Gender     string    `json:"gender,omitempty"`
	Tier       int       `json:"tier"`
	Verified   bool      `json:"verified"`
	MFAEnabled bool      `json:"mfa_enabled"`
	Suspended  bool      `json:"suspended"`
	Roles      []string  `json:"roles,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// Suspension filters for admin listings. The default hides suspended
// accounts; admins can widen the view to audit or restore them.
const (
	SuspendedExclude = ""
	SuspendedInclude = "include"
	SuspendedOnly    = "only"
)

type ListUsersParams struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Search    string `json:"search"`
	Suspended string `json:"suspended"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	switch p.Suspended {
	case SuspendedInclude, SuspendedOnly:
	default:
		p.Suspended = SuspendedExclude
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Gender:     u.Gender,
		Tier:       u.Tier,
		Verified:   u.Verified,
		MFAEnabled: u.MFAEnabled,
		Suspended:  u.IsSuspended(),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}

	if u.Phone != nil {
		resp.Phone = *u.Phone
	}

	return resp
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}

package models

import (
	"slices"
	"time"
)

// UserRole is ordered by privilege: applicant < member < admin < super_admin.
type UserRole string

const (
	RoleApplicant  UserRole = "applicant"
	RoleMember     UserRole = "member"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

var roleOrder = []UserRole{RoleApplicant, RoleMember, RoleAdmin, RoleSuperAdmin}

// Rank returns the privilege level of r. Unknown roles rank 0, below applicant.
func (r UserRole) Rank() int {
	return slices.Index(roleOrder, r) + 1
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool { return r.Rank() > 0 }

// AtLeast reports whether r carries at least the privilege of other.
func (r UserRole) AtLeast(other UserRole) bool {
	return r.Valid() && r.Rank() >= other.Rank()
}

// ApplicationStatus tracks a prospective member's admission request.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// UserModel is an account in the identity store.
type UserModel struct {
	Base
	Username          string            `json:"username"           gorm:"uniqueIndex;size:64;not null"`
	Name              string            `json:"name"`
	Mail              string            `json:"mail"               gorm:"index"`
	Password          string            `json:"-"                  gorm:"not null"`
	Role              UserRole          `json:"role"               gorm:"size:16;index;not null;default:applicant"`
	ApplicationStatus ApplicationStatus `json:"application_status" gorm:"size:16;not null;default:pending"`
	LastLoginTime     *time.Time        `json:"last_login_time"`
	LastLoginIP       string            `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }

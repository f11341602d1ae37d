// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleAdmin  = "admin"
	RolePolice = "police"
)

// Account statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Capability tags. PermAll grants every capability.
const (
	PermCasesRead   = "cases_read"
	PermCasesWrite  = "cases_write"
	PermCasesDelete = "cases_delete"
	PermUsersRead   = "users_read"
	PermUsersWrite  = "users_write"
	PermUsersDelete = "users_delete"
	PermReportsRead = "reports_read"
	PermAll         = "all"
)

// Roles lists the valid role values.
var Roles = []string{RoleAdmin, RolePolice}

// Statuses lists the valid account statuses.
var Statuses = []string{StatusActive, StatusInactive, StatusSuspended}

// Permissions lists the valid capability tags.
var Permissions = []string{
	PermCasesRead, PermCasesWrite, PermCasesDelete,
	PermUsersRead, PermUsersWrite, PermUsersDelete,
	PermReportsRead, PermAll,
}

// User is an admin or police account.
//
// (username, role) is unique, and so is email. PasswordHash, LoginAttempts
// and LockUntil never leave the server; use Profile for responses.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	FullName     string             `bson:"full_name" json:"fullName"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"`
	Email        string             `bson:"email" json:"email"`
	BadgeNumber  string             `bson:"badge_number,omitempty" json:"badgeNumber,omitempty"`
	Department   string             `bson:"department,omitempty" json:"department,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Station      string             `bson:"station,omitempty" json:"station,omitempty"`
	Status       string             `bson:"status" json:"status"`
	Permissions  []string           `bson:"permissions,omitempty" json:"permissions"`

	LastLogin     *time.Time `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	LoginAttempts int        `bson:"login_attempts" json:"-"`
	LockUntil     *time.Time `bson:"lock_until,omitempty" json:"-"`

	CreatedBy *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}

// IsLocked reports whether the account is locked at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// HasPermission reports whether the permission set grants perm.
// Role-based bypass is handled by authz, not here.
func (u *User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm || p == PermAll {
			return true
		}
	}
	return false
}

// Profile is the client-visible view of a user.
type Profile struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	BadgeNumber string     `json:"badgeNumber,omitempty"`
	Department  string     `json:"department,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Station     string     `json:"station,omitempty"`
	Status      string     `json:"status"`
	Permissions []string   `json:"permissions"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Profile strips credentials and lock metadata.
func (u *User) Profile() Profile {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return Profile{
		ID:          u.ID.Hex(),
		Username:    u.Username,
		Role:        u.Role,
		FullName:    u.FullName,
		Email:       u.Email,
		BadgeNumber: u.BadgeNumber,
		Department:  u.Department,
		Phone:       u.Phone,
		Station:     u.Station,
		Status:      u.Status,
		Permissions: perms,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

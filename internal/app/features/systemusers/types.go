// internal/app/features/systemusers/types.go
package systemusers

import (
	"time"

	"github.com/dalemusser/crms/internal/domain/models"
)

// createInput is the POST /api/users body.
type createInput struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	FullName    string   `json:"fullName"`
	Email       string   `json:"email"`
	BadgeNumber string   `json:"badgeNumber"`
	Department  string   `json:"department"`
	Phone       string   `json:"phone"`
	Station     string   `json:"station"`
	Status      string   `json:"status"`
	Permissions []string `json:"permissions"`
}

// updateInput is the PUT /api/users/{id} body. Nil fields are left alone.
// Password, Username and Role are decoded only so they can be refused.
type updateInput struct {
	FullName    *string   `json:"fullName"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	BadgeNumber *string   `json:"badgeNumber"`
	Department  *string   `json:"department"`
	Station     *string   `json:"station"`
	Status      *string   `json:"status"`
	Permissions *[]string `json:"permissions"`

	Password *string `json:"password"`
	Username *string `json:"username"`
	Role     *string `json:"role"`
}

type resetInput struct {
	NewPassword string `json:"newPassword"`
}

// userView is what administrators see: the profile plus lock state.
type userView struct {
	models.Profile
	CreatedBy     string     `json:"createdBy,omitempty"`
	LoginAttempts int        `json:"loginAttempts"`
	LockUntil     *time.Time `json:"lockUntil,omitempty"`
	IsLocked      bool       `json:"isLocked"`
}

func newUserView(u *models.User, now time.Time) userView {
	v := userView{
		Profile:       u.Profile(),
		LoginAttempts: u.LoginAttempts,
		IsLocked:      u.IsLocked(now),
	}
	if v.IsLocked {
		v.LockUntil = u.LockUntil
	}
	if u.CreatedBy != nil {
		v.CreatedBy = u.CreatedBy.Hex()
	}
	return v
}

// officerView is one entry of the officer picker.
type officerView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	BadgeNumber string `json:"badgeNumber,omitempty"`
	Department  string `json:"department,omitempty"`
	Station     string `json:"station,omitempty"`
}

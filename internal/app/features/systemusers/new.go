// internal/app/features/systemusers/new.go
package systemusers

import (
	"context"
	"net/http"
	"time"

	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/formutil"
	"github.com/dalemusser/crms/internal/app/system/inputval"
	"github.com/dalemusser/crms/internal/app/system/limits"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.uber.org/zap"
)

const maxUsernameLength = 50

// validateCreate normalizes in and collects every field failure.
func validateCreate(in *createInput) error {
	in.Username = normalize.Username(in.Username)
	in.Role = normalize.Role(in.Role)
	in.FullName = normalize.Name(in.FullName)
	in.Email = normalize.Email(in.Email)
	in.Status = normalize.Status(in.Status)
	in.Station = normalize.StationCode(in.Station)
	in.Permissions = cleanPermissions(in.Permissions)

	var v apierr.ValidationError
	switch {
	case in.Username == "":
		v.Add("username", "Username is required")
	case len(in.Username) > maxUsernameLength:
		v.Add("username", "Username is too long")
	}
	if !inputval.IsValidPassword(in.Password) {
		v.Add("password", "Password must be at least 6 characters")
	}
	if !inputval.OneOf(in.Role, models.Roles) {
		v.Add("role", `Role must be "admin" or "police"`)
	}
	if in.FullName == "" {
		v.Add("fullName", "Full name is required")
	}
	if !inputval.IsValidEmail(in.Email) {
		v.Add("email", "A valid email is required")
	}
	if in.Status != "" && !inputval.OneOf(in.Status, models.Statuses) {
		v.Add("status", "Invalid status")
	}
	checkPermissions(in.Permissions, &v)
	return v.Err()
}

// HandleCreate handles POST /api/users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actor, ok := userContext(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}

	var in createInput
	if !formutil.Decode(w, r, limits.MaxAdminBodySize, &in) {
		return
	}
	if err := validateCreate(&in); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := checkStation(ctx, h.DB, in.Station); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	hash, err := h.Auth.HashPassword("password", in.Password)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	u, err := userstore.New(h.DB).Create(ctx, models.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		FullName:     in.FullName,
		Email:        in.Email,
		BadgeNumber:  in.BadgeNumber,
		Department:   in.Department,
		Phone:        in.Phone,
		Station:      in.Station,
		Status:       in.Status,
		Permissions:  in.Permissions,
		CreatedBy:    &actor,
	})
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}

	h.AuditLog.UserCreated(ctx, actor, u.ID, u.Username, u.Role)
	h.Log.Info("user created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("username", u.Username),
		zap.String("role", u.Role))

	apierr.OK(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"data":    newUserView(&u, time.Now()),
	})
}

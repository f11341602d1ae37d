// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/app/system/formutil"
	"github.com/dalemusser/crms/internal/app/system/inputval"
	"github.com/dalemusser/crms/internal/app/system/limits"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
)

// ServeProfile handles GET /api/auth/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) {
		apierr.Write(w, h.Log, apierr.ErrUserNotFound)
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.OK(w, http.StatusOK, map[string]any{"user": user.Profile()})
}

// profileUpdate holds the only fields a user may change about themselves.
type profileUpdate struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

// HandleUpdateProfile handles PUT /api/auth/profile.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}

	var in profileUpdate
	if !formutil.Decode(w, r, limits.MaxAuthBodySize, &in) {
		return
	}

	var v apierr.ValidationError
	var changed []string
	if in.FullName != nil {
		if normalize.Name(*in.FullName) == "" {
			v.Add("fullName", "Full name cannot be empty")
		}
		changed = append(changed, "fullName")
	}
	if in.Email != nil {
		if !inputval.IsValidEmail(normalize.Email(*in.Email)) {
			v.Add("email", "A valid email is required")
		}
		changed = append(changed, "email")
	}
	if in.Phone != nil {
		changed = append(changed, "phone")
	}
	if err := v.Err(); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users := userstore.New(h.DB)
	if in.Email != nil {
		taken, err := users.EmailExistsForOther(ctx, *in.Email, uid)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		if taken {
			apierr.Write(w, h.Log, apierr.Duplicate("email"))
			return
		}
	}

	user, err := users.Update(ctx, uid, userstore.Update{
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
	})
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		apierr.Write(w, h.Log, apierr.ErrUserNotFound)
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		apierr.Write(w, h.Log, apierr.Duplicate("email"))
		return
	case err != nil:
		apierr.Write(w, h.Log, err)
		return
	}

	if len(changed) > 0 {
		h.AuditLog.UserUpdated(ctx, uid, uid, strings.Join(changed, ","))
	}
	apierr.OK(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    user.Profile(),
	})
}

type passwordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleChangePassword handles PUT /api/auth/change-password. The current
// session stays valid.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}

	var in passwordChange
	if !formutil.Decode(w, r, limits.MaxAuthBodySize, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Auth.ChangePassword(ctx, uid, in.CurrentPassword, in.NewPassword); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"message": "Password changed successfully"})
}

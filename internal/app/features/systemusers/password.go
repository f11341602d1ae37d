// internal/app/features/systemusers/password.go
package systemusers

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/formutil"
	"github.com/dalemusser/crms/internal/app/system/limits"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
)

// HandleResetPassword handles PUT /api/users/{id}/reset-password. Every
// session the user holds is revoked.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	_, _, who, ok := userContext(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}
	uid, err := targetID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	var in resetInput
	if !formutil.Decode(w, r, limits.MaxAuthBodySize, &in) {
		return
	}
	hash, err := h.Auth.HashPassword("newPassword", in.NewPassword)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := userstore.New(h.DB).SetPassword(ctx, uid, hash); err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}
	h.AuditLog.PasswordReset(ctx, who, uid)

	if err := h.Auth.RevokeAll(ctx, uid); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"message": "Password reset successfully"})
}

// HandleUnlock handles PUT /api/users/{id}/unlock: clears failed attempts
// and any lock.
func (h *Handler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	_, _, who, ok := userContext(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}
	uid, err := targetID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := userstore.New(h.DB).ClearLoginAttempts(ctx, uid, nil); err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}
	h.AuditLog.UserUnlocked(ctx, who, uid)

	apierr.OK(w, http.StatusOK, map[string]any{"message": "User account unlocked successfully"})
}

// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/crms/internal/app/workflow/authn"
	"go.uber.org/zap"
)

type Handler struct {
	Log  *zap.Logger
	Auth *authn.Authenticator
}

func NewHandler(a *authn.Authenticator, logger *zap.Logger) *Handler {
	return &Handler{
		Log:  logger,
		Auth: a,
	}
}

// HandleLogout handles POST /api/auth/logout. The caller's token is
// revoked until it would have expired; other sessions stay valid.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Auth.Logout(ctx, u); err != nil {
		h.Log.Error("logout: revoke token", zap.Error(err), zap.String("user_id", u.ID))
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.OK(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

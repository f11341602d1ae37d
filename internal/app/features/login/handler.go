// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/crms/internal/app/store/audit"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/auditlog"
	"github.com/dalemusser/crms/internal/app/system/formutil"
	"github.com/dalemusser/crms/internal/app/system/limits"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/app/system/ratelimit"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/crms/internal/app/workflow/authn"
	"go.uber.org/zap"
)

type Handler struct {
	Auth     *authn.Authenticator
	Limiter  *ratelimit.LoginLimiter
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(a *authn.Authenticator, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:     a,
		Limiter:  limiter,
		AuditLog: audit,
		Log:      logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleLogin handles POST /api/auth/login.
//
// Success: 200 {"success":true,"token":"…","expiresAt":"…","user":{…}}.
// Bad credentials are 401, a locked account 423, too many attempts 429.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !formutil.Decode(w, r, limits.MaxAuthBodySize, &req) {
		return
	}
	username := normalize.Username(req.Username)
	role := normalize.Role(req.Role)

	if h.Limiter != nil {
		if err := h.Limiter.Check(r, username, role); err != nil {
			h.AuditLog.LoginFailed(r.Context(), audit.EventLoginFailedRateLimit, nil, username, role, "rate limited")
			apierr.Write(w, h.Log, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Auth.Authenticate(ctx, username, req.Password, role)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetAccount(username, role)
	}

	h.Log.Info("user logged in",
		zap.String("user_id", res.User.ID),
		zap.String("role", role))

	apierr.OK(w, http.StatusOK, map[string]any{
		"message":   "Login successful",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	})
}

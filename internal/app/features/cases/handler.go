// internal/app/features/cases/handler.go
package cases

import (
	"net/http"

	"github.com/dalemusser/crms/internal/app/policy/casepolicy"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/workflow/casework"
	"go.uber.org/zap"
)

// Handler serves the case API on top of the casework workflow.
type Handler struct {
	Cases *casework.Service
	Log   *zap.Logger
}

func NewHandler(svc *casework.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Cases: svc,
		Log:   logger,
	}
}

// actor resolves the caller or writes 401 and reports false.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (casepolicy.Actor, bool) {
	u, _ := auth.CurrentUser(r)
	a, ok := casepolicy.ActorFromSession(u)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
	}
	return a, ok
}

// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"time"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
	now func() time.Time
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
		now: time.Now,
	}
}

// ServeStats handles GET /api/dashboard/stats and dispatches on the
// caller's role: admins see every case plus account totals, police see
// only the cases assigned to them.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}

	switch role {
	case models.RoleAdmin:
		h.serveAdmin(w, r)
	case models.RolePolice:
		h.servePolice(w, r, uid)
	default:
		apierr.Write(w, h.Log, apierr.ErrPermissionDenied)
	}
}

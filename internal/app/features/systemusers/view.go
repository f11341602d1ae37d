// internal/app/features/systemusers/view.go
package systemusers

import (
	"context"
	"net/http"
	"time"

	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
)

// ServeUser handles GET /api/users/{id}.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	uid, err := targetID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"data": newUserView(u, time.Now())})
}

// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"

	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
)

func (h *Handler) serveAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	data, err := fetchCaseStats(ctx, h.DB, casestore.Filter{}, h.now())
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	users, err := userstore.New(h.DB).Stats(ctx)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	data.Users = users

	apierr.OK(w, http.StatusOK, map[string]any{"data": data})
}

// internal/app/features/dashboard/police.go
package dashboard

import (
	"context"
	"net/http"

	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// servePolice shows the officer's own caseload.
func (h *Handler) servePolice(w http.ResponseWriter, r *http.Request, officer primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	data, err := fetchCaseStats(ctx, h.DB, casestore.Filter{AssignedOfficer: &officer}, h.now())
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"data": data})
}

// internal/app/features/stations/new.go
package stations

import (
	"context"
	"net/http"

	"github.com/dalemusser/crms/internal/app/store/audit"
	stationstore "github.com/dalemusser/crms/internal/app/store/stations"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/app/system/formutil"
	"github.com/dalemusser/crms/internal/app/system/limits"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
)

// HandleCreate handles POST /api/stations.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actor, ok := authz.UserCtx(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}

	var in stationInput
	if !formutil.Decode(w, r, limits.MaxAdminBodySize, &in) {
		return
	}
	if err := in.validate(); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := stationstore.New(h.DB).Create(ctx, in.toModel())
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}
	h.AuditLog.StationChanged(ctx, audit.EventStationCreated, actor, st.StationCode)

	apierr.OK(w, http.StatusCreated, map[string]any{
		"message": "Station created successfully",
		"data":    st,
	})
}

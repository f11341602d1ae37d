// internal/app/features/stations/edit.go
package stations

import (
	"context"
	"net/http"

	"github.com/dalemusser/crms/internal/app/store/audit"
	stationstore "github.com/dalemusser/crms/internal/app/store/stations"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/app/system/formutil"
	"github.com/dalemusser/crms/internal/app/system/limits"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
)

// HandleEdit handles PUT /api/stations/{id}. The code of a station that
// users belong to cannot change, since users reference stations by code.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	_, _, actor, ok := authz.UserCtx(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}
	id, err := stationID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	stations := stationstore.New(h.DB)
	current, err := stations.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}
	if normalize.StationCode(in.StationCode) != current.StationCode {
		n, err := userstore.New(h.DB).CountByStation(ctx, current.StationCode)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		if n > 0 {
			apierr.Write(w, h.Log, apierr.Invalid("stationCode", "Station code is in use by users"))
			return
		}
	}

	st, err := stations.Update(ctx, id, in.toModel())
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}
	h.AuditLog.StationChanged(ctx, audit.EventStationUpdated, actor, st.StationCode)

	apierr.OK(w, http.StatusOK, map[string]any{
		"message": "Station updated successfully",
		"data":    st,
	})
}

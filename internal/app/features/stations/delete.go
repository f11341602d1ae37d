// internal/app/features/stations/delete.go
package stations

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/crms/internal/app/store/audit"
	stationstore "github.com/dalemusser/crms/internal/app/store/stations"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete deletes a station nobody belongs to.
//
// Route: DELETE /api/stations/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	stations := stationstore.New(h.DB)
	st, err := stations.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}

	n, err := userstore.New(h.DB).CountByStation(ctx, st.StationCode)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if n > 0 {
		apierr.Write(w, h.Log, apierr.Invalid("stationCode",
			fmt.Sprintf("Station has %d assigned user(s)", n)))
		return
	}

	deleted, err := stations.Delete(ctx, id)
	if err != nil {
		h.Log.Error("delete station failed", zap.Error(err), zap.String("station_id", id.Hex()))
		apierr.Write(w, h.Log, err)
		return
	}
	if deleted == 0 {
		apierr.Write(w, h.Log, apierr.ErrNotFound)
		return
	}
	h.AuditLog.StationChanged(ctx, audit.EventStationDeleted, actor, st.StationCode)

	apierr.OK(w, http.StatusOK, map[string]any{"message": "Station deleted successfully"})
}

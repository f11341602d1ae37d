// internal/app/features/stations/view.go
package stations

import (
	"context"
	"net/http"

	stationstore "github.com/dalemusser/crms/internal/app/store/stations"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
)

// ServeStation handles GET /api/stations/{id}.
func (h *Handler) ServeStation(w http.ResponseWriter, r *http.Request) {
	id, err := stationID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := stationstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"data": st})
}

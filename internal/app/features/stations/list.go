// internal/app/features/stations/list.go
package stations

import (
	"context"
	"net/http"

	stationstore "github.com/dalemusser/crms/internal/app/store/stations"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
)

// ServeList handles GET /api/stations. The directory is small, so it is
// returned whole, ordered by name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := stationstore.New(h.DB).List(ctx)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"data": out})
}

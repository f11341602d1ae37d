// internal/app/features/dashboard/performance.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// parseDay accepts an RFC 3339 timestamp or a bare date. endOfDay moves a
// bare date to its last instant so ranges are inclusive.
func parseDay(s string, endOfDay bool) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}

// ServeOfficerPerformance handles GET /api/dashboard/officer-performance
// with optional ?startDate= and ?endDate= on case creation time.
func (h *Handler) ServeOfficerPerformance(w http.ResponseWriter, r *http.Request) {
	var v apierr.ValidationError
	from, ok := parseDay(query.Get(r, "startDate"), false)
	if !ok {
		v.Add("startDate", "Start date must be YYYY-MM-DD or RFC 3339")
	}
	to, ok := parseDay(query.Get(r, "endDate"), true)
	if !ok {
		v.Add("endDate", "End date must be YYYY-MM-DD or RFC 3339")
	}
	if from != nil && to != nil && to.Before(*from) {
		v.Add("endDate", "End date must not be before start date")
	}
	if err := v.Err(); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := casestore.New(h.DB).OfficerPerformance(ctx, casestore.Filter{CreatedFrom: from, CreatedTo: to})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"data": rows})
}

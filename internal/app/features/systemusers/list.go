// internal/app/features/systemusers/list.go
package systemusers

import (
	"context"
	"net/http"
	"time"

	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/paging"
	"github.com/dalemusser/crms/internal/app/system/search"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

var sortFields = map[string]string{
	"username":  "username",
	"fullName":  "full_name_ci",
	"role":      "role",
	"status":    "status",
	"createdAt": "created_at",
	"lastLogin": "last_login",
	"email":     "email",
}

// ServeList handles GET /api/users with role, status, station and search
// filters plus paging. Without sortBy, an email-looking search on a filtered
// list sorts by email.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := userstore.ListFilter{
		Role:    query.Get(r, "role"),
		Status:  query.Get(r, "status"),
		Station: query.Get(r, "station"),
		Search:  query.Get(r, "search"),
	}
	pg := paging.Parse(r)
	def := "created_at"
	if search.EmailPivot(f.Search, f.Status, f.Role) {
		def = "email"
	}
	sort := paging.Sort(r, sortFields, def)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users := userstore.New(h.DB)
	total, err := users.Count(ctx, f)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	rows, err := users.List(ctx, f, sort, pg.Skip(), int64(pg.Limit))
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	now := time.Now()
	out := make([]userView, 0, len(rows))
	for i := range rows {
		out = append(out, newUserView(&rows[i], now))
	}
	apierr.OK(w, http.StatusOK, map[string]any{
		"data":       out,
		"pagination": paging.NewMeta(pg, total),
	})
}

// ServeOfficers handles GET /api/users/officers: active police users for
// case assignment.
func (h *Handler) ServeOfficers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := userstore.New(h.DB).ActiveOfficers(ctx)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	out := make([]officerView, 0, len(rows))
	for _, u := range rows {
		out = append(out, officerView{
			ID:          u.ID.Hex(),
			Username:    u.Username,
			FullName:    u.FullName,
			BadgeNumber: u.BadgeNumber,
			Department:  u.Department,
			Station:     u.Station,
		})
	}
	apierr.OK(w, http.StatusOK, map[string]any{"data": out})
}

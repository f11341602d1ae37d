// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/crms/internal/app/store/audit"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/inputval"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/app/system/paging"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// parseDate accepts RFC 3339 or YYYY-MM-DD. A bare end date covers the
// whole day.
func parseDate(s string, end bool) (*time.Time, bool) {
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
	if end {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, true
}

// filterFromQuery reads category, eventType, userId, startDate and endDate.
func filterFromQuery(r *http.Request) (audit.QueryFilter, error) {
	var v apierr.ValidationError
	f := audit.QueryFilter{
		Category:  normalize.QueryParam(query.Get(r, "category")),
		EventType: normalize.QueryParam(query.Get(r, "eventType")),
	}
	if f.Category != "" && eventTypesForCategory(f.Category) == nil {
		v.Add("category", "Unknown category")
	}
	if s := normalize.QueryParam(query.Get(r, "userId")); s != "" {
		if !inputval.IsValidObjectID(s) {
			v.Add("userId", "User id must be a valid id")
		} else {
			id, _ := primitive.ObjectIDFromHex(s)
			f.UserID = &id
		}
	}
	var ok bool
	if f.StartTime, ok = parseDate(query.Get(r, "startDate"), false); !ok {
		v.Add("startDate", "Start date must be YYYY-MM-DD or RFC 3339")
	}
	if f.EndTime, ok = parseDate(query.Get(r, "endDate"), true); !ok {
		v.Add("endDate", "End date must be YYYY-MM-DD or RFC 3339")
	}
	return f, v.Err()
}

// ServeList handles GET /api/audit: audit events newest first with
// filtering and paging.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	pg := paging.Parse(r)
	filter.Limit = int64(pg.Limit)
	filter.Offset = pg.Skip()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	auditStore := audit.New(h.DB)
	events, err := auditStore.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		apierr.Write(w, h.Log, err)
		return
	}
	total, err := auditStore.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.OK(w, http.StatusOK, map[string]any{
		"data":       h.resolve(r, events),
		"pagination": paging.NewMeta(pg, total),
		"categories": allCategories(),
		"eventTypes": eventTypesForCategory(filter.Category),
	})
}

// ServeFailedLogins handles GET /api/audit/failed-logins?hours=N (default
// 24, at most a week).
func (h *Handler) ServeFailedLogins(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if s := query.Get(r, "hours"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 24*7 {
			apierr.Write(w, h.Log, apierr.Invalid("hours", "Hours must be between 1 and 168"))
			return
		}
		hours = n
	}
	pg := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "failed logins")
	defer cancel()

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	events, err := audit.New(h.DB).GetFailedLogins(ctx, since, int64(pg.Limit))
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"data": h.resolve(r, events)})
}

// resolve turns events into list items, looking up actor and target names
// in one batch. Users that no longer exist show their id.
func (h *Handler) resolve(r *http.Request, events []audit.Event) []listItem {
	seen := make(map[primitive.ObjectID]struct{})
	ids := make([]primitive.ObjectID, 0)
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}

	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) > 0 {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "audit user names")
		defer cancel()
		users, err := userstore.New(h.DB).GetManyByIDs(ctx, ids)
		if err != nil {
			h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		}
		for id, u := range users {
			names[id] = u.FullName
		}
	}
	nameOf := func(id primitive.ObjectID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id.Hex()
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.ActorID != nil {
			item.ActorID = e.ActorID.Hex()
			item.ActorName = nameOf(*e.ActorID)
		}
		if e.UserID != nil {
			item.UserID = e.UserID.Hex()
			item.TargetName = nameOf(*e.UserID)
		}
		items = append(items, item)
	}
	return items
}

// internal/app/features/cases/list.go
package cases

import (
	"context"
	"net/http"

	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/app/system/paging"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sortFields maps ?sortBy= values to stored fields.
var sortFields = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"incidentDate": "incident_date",
	"priority":     "priority",
	"status":       "status",
	"caseId":       "case_id",
	"title":        "title",
}

// filterFromQuery reads the list filters. An assignedOfficer that is not
// an ObjectID is a validation error.
func filterFromQuery(r *http.Request) (casestore.Filter, error) {
	f := casestore.Filter{
		Status:   normalize.Status(query.Get(r, "status")),
		Type:     normalize.Status(query.Get(r, "type")),
		Priority: normalize.Status(query.Get(r, "priority")),
		Search:   normalize.QueryParam(query.Get(r, "search")),
	}
	if s := normalize.QueryParam(query.Get(r, "assignedOfficer")); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return f, apierr.Invalid("assignedOfficer", "Assigned officer must be a valid id")
		}
		f.AssignedOfficer = &id
	}
	return f, nil
}

// ServeList handles GET /api/cases.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Cases.List(ctx, actor, f, paging.Parse(r), paging.Sort(r, sortFields, "created_at"))
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{
		"data":       res.Cases,
		"pagination": res.Pagination,
	})
}

// ServeStats handles GET /api/cases/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	st, err := h.Cases.Stats(ctx, actor)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"data": st})
}

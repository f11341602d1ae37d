// internal/app/features/cases/edit.go
package cases

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/formutil"
	"github.com/dalemusser/crms/internal/app/system/limits"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/crms/internal/app/workflow/casework"
	"github.com/go-chi/chi/v5"
)

// HandleCreate handles POST /api/cases.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in casework.CreateInput
	if !formutil.Decode(w, r, limits.MaxCaseBodySize, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	view, err := h.Cases.Create(ctx, actor, in)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusCreated, map[string]any{
		"message": "Case created successfully",
		"data":    view,
	})
}

// ServeCase handles GET /api/cases/{caseId}.
func (h *Handler) ServeCase(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	view, err := h.Cases.Get(ctx, actor, chi.URLParam(r, "caseId"))
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"data": view})
}

// HandleUpdate handles PUT /api/cases/{caseId}. The body is a partial case
// plus an optional updateReason.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var patch map[string]json.RawMessage
	if !formutil.Decode(w, r, limits.MaxCaseBodySize, &patch) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	view, err := h.Cases.Update(ctx, actor, chi.URLParam(r, "caseId"), patch)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{
		"message": "Case updated successfully",
		"data":    view,
	})
}

// HandleDelete handles DELETE /api/cases/{caseId}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Cases.Delete(ctx, actor, chi.URLParam(r, "caseId")); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusOK, map[string]any{"message": "Case deleted successfully"})
}

type noteRequest struct {
	Content   string `json:"content"`
	IsPrivate bool   `json:"isPrivate"`
}

// HandleAddNote handles POST /api/cases/{caseId}/notes and returns the
// notes the caller may see.
func (h *Handler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in noteRequest
	if !formutil.Decode(w, r, limits.MaxAuthBodySize, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	notes, err := h.Cases.AddNote(ctx, actor, chi.URLParam(r, "caseId"), in.Content, in.IsPrivate)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.OK(w, http.StatusCreated, map[string]any{
		"message": "Note added successfully",
		"data":    notes,
	})
}

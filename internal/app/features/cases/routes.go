// internal/app/features/cases/routes.go
package cases

import (
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the case endpoints under /api/cases. Every route needs an
// authenticated admin or police user; per-case access and the delete
// capability are enforced by the workflow.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireAuth)
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RolePolice))

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/stats", h.ServeStats)
		pr.Get("/{caseId}", h.ServeCase)
		pr.Put("/{caseId}", h.HandleUpdate)
		pr.Delete("/{caseId}", h.HandleDelete)
		pr.Post("/{caseId}/notes", h.HandleAddNote)
	})

	return r
}

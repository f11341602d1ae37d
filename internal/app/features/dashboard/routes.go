// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/api/dashboard").
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireAuth)
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RolePolice))

		pr.Get("/stats", h.ServeStats)
		pr.With(authz.RequireCapability(models.PermReportsRead)).
			Get("/officer-performance", h.ServeOfficerPerformance)
	})

	return r
}

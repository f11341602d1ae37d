// internal/app/features/stations/routes.go
package stations

import (
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all station routes under the base path
// (typically "/api/stations" from bootstrap).
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	// Any signed-in user can read the directory.
	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireAuth)
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeStation)
	})

	// Admin-only writes.
	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireAuth)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleEdit)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}

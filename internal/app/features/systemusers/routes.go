// internal/app/features/systemusers/routes.go
package systemusers

import (
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user administration routes under the path where this
// router is mounted (typically "/api/users" from bootstrap).
//
// Example mount from bootstrap:
//
//	h := systemusers.NewHandler(db, authenticator, auditLogger, logger)
//	r.Mount("/api/users", systemusers.Routes(h, authMW))
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireAuth)
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RolePolice))

		// Officer picker for case assignment.
		pr.Get("/officers", h.ServeOfficers)

		pr.With(authz.RequireCapability(models.PermUsersRead)).Get("/", h.ServeList)
		pr.With(authz.RequireCapability(models.PermUsersRead)).Get("/{id}", h.ServeUser)

		pr.Group(func(wr chi.Router) {
			wr.Use(authz.RequireCapability(models.PermUsersWrite))
			wr.Post("/", h.HandleCreate)
			wr.Put("/{id}", h.HandleUpdate)
			wr.Put("/{id}/reset-password", h.HandleResetPassword)
			wr.Put("/{id}/unlock", h.HandleUnlock)
		})

		pr.With(authz.RequireCapability(models.PermUsersDelete)).Delete("/{id}", h.HandleDelete)
	})

	return r
}

// internal/app/features/logout/routes.go
package logout

import (
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Only authenticated callers have a token to revoke.
		pr.Use(mw.RequireAuth)
		pr.Post("/", h.HandleLogout)
	})

	return r
}

// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// Routes is mounted under /api/auth behind RequireAuth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/profile", h.ServeProfile)
	r.Put("/profile", h.HandleUpdateProfile)
	r.Put("/change-password", h.HandleChangePassword)
	return r
}

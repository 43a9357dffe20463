// internal/app/features/members/routes.go
package members

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts all member routes under the path where the caller mounts it.
// Typically: r.Mount("/api/members", members.Routes(handler, issuer.RequireAdmin))
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public wall
	r.Get("/", h.ServeList)
	r.Get("/stats", h.ServeStats)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(requireAdmin)

		pr.Post("/", h.HandleCreate)
		pr.Put("/reorder/bulk", h.HandleReorder)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Put("/{id}/toggle", h.HandleToggle)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// internal/app/features/pins/routes.go
package pins

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the pin registry. Reads are public; writes need an admin.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(requireAdmin)

		pr.Post("/", h.HandleCreate)
		pr.Put("/reorder", h.HandleReorder)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// internal/app/features/auditlog/routes.go
package auditlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit trail (typically at "/api/audit"). Admins only.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireAdmin)
	r.Get("/", h.ServeList)
	r.Get("/failed-logins", h.ServeFailedLogins)
	return r
}

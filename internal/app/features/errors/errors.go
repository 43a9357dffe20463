// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
)

// Handler answers requests no route matched.
// No DB needed; it only writes JSON.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound is the router's fallback for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.NotFound(w, "Route not found")
}

// MethodNotAllowed is the router's fallback for a known path with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// internal/app/features/pins/list.go
package pins

import (
	"net/http"

	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
	"github.com/phearom922/wall-of-fame/internal/domain/models"
)

// ServeList handles GET /api/pins: every pin by rank, then name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list pins")
	defer cancel()

	pins, err := h.Pins.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "list pins", err)
		return
	}
	if pins == nil {
		pins = []models.Pin{}
	}
	respond.OK(w, pins)
}

// ServeGet handles GET /api/pins/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := pinIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "get pin", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get pin")
	defer cancel()

	pin, err := h.Pins.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "get pin", err)
		return
	}
	respond.OK(w, pin)
}

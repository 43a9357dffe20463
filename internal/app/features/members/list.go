// internal/app/features/members/list.go
package members

import (
	"net/http"

	"github.com/phearom922/wall-of-fame/internal/app/store/queries/memberquery"
	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
)

// ServeList handles GET /api/members.
//
// Query: status, pin, q, enabled, page, limit, order, orderBy.
// Response: { "data": [...], "pagination": {page, limit, total, totalPages} }
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list members")
	defer cancel()

	page, err := h.Query.List(ctx, memberquery.ParseParams(r))
	if err != nil {
		h.ErrLog.Respond(w, r, "list members", err)
		return
	}
	respond.OK(w, page)
}

// ServeStats handles GET /api/members/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "member stats")
	defer cancel()

	stats, err := h.Query.Stats(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "member stats", err)
		return
	}
	respond.OK(w, stats)
}

// ServeGet handles GET /api/members/{id}. The member is returned with its
// current status and pin rank.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "get member", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get member")
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "get member", err)
		return
	}
	row, err := h.Query.Get(ctx, m)
	if err != nil {
		h.ErrLog.Respond(w, r, "get member", err)
		return
	}
	respond.OK(w, row)
}

// internal/app/features/members/reorder.go
package members

import (
	"net/http"

	"github.com/phearom922/wall-of-fame/internal/app/system/auth"
	"github.com/phearom922/wall-of-fame/internal/app/system/reorder"
	"github.com/phearom922/wall-of-fame/internal/app/system/reqbody"
	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
)

const maxReorderBody = 1 << 20

type reorderResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

// HandleReorder handles PUT /api/members/reorder/bulk.
//
// Body: { "pin": "Emerald", "items": [{ "id": "...", "pinOrder": 0 }, ...] }
// Every member must already be in pin; otherwise nothing is written.
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorder.MembersRequest
	if err := reqbody.DecodeJSON(w, r, maxReorderBody, &req); err != nil {
		h.ErrLog.Respond(w, r, "reorder members", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "reorder members")
	defer cancel()

	n, err := h.Reorder.Members(ctx, req)
	if err != nil {
		h.ErrLog.Respond(w, r, "reorder members", err)
		return
	}

	actor, _ := auth.CurrentAdmin(r)
	h.AuditLog.MembersReordered(ctx, r, actor, req.Pin, n)

	respond.OK(w, reorderResponse{Message: "Reordered", Updated: n})
}

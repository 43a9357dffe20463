// internal/app/features/members/edit.go
package members

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	memberstore "github.com/phearom922/wall-of-fame/internal/app/store/members"
	"github.com/phearom922/wall-of-fame/internal/app/system/auth"
	"github.com/phearom922/wall-of-fame/internal/app/system/reqbody"
	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
	"github.com/phearom922/wall-of-fame/internal/domain/models"
)

type toggleResponse struct {
	Message string        `json:"message"`
	Member  models.Member `json:"member"`
}

// HandleUpdate handles PUT /api/members/{id}. Only the fields present in the
// body change. memberId may be repeated but not changed.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "update member", err)
		return
	}
	b, err := reqbody.Parse(w, r, imageField, h.MaxBody)
	if err != nil {
		h.ErrLog.Respond(w, r, "update member", err)
		return
	}
	defer b.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update member")
	defer cancel()

	existing, err := h.Members.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "update member", err)
		return
	}

	upd, changed, err := h.buildUpdate(ctx, b, existing)
	if err != nil {
		h.ErrLog.Respond(w, r, "update member", err)
		return
	}

	url, set, err := h.imageURL(ctx, b)
	if err != nil {
		h.ErrLog.Respond(w, r, "update member", err)
		return
	}
	if set {
		upd.ImageURL = &url
		changed = append(changed, keyImageURL)
	}

	m, err := h.Members.Update(ctx, id, upd)
	if err != nil {
		h.ErrLog.Respond(w, r, "update member", err)
		return
	}

	actor, _ := auth.CurrentAdmin(r)
	h.AuditLog.MemberUpdated(ctx, r, actor, m.ID, strings.Join(changed, ","))

	respond.OK(w, m)
}

func (h *Handler) buildUpdate(ctx context.Context, b *reqbody.Body, existing models.Member) (memberstore.Update, []string, error) {
	var (
		upd     memberstore.Update
		changed []string
	)

	if b.Has(keyMemberID) && b.String(keyMemberID) != existing.MemberID {
		return upd, nil, apierrors.Invalid("memberId cannot be changed")
	}
	if b.Has(keyMemberName) {
		name := b.String(keyMemberName)
		if name == "" {
			return upd, nil, apierrors.Invalid("memberName cannot be empty")
		}
		upd.MemberName = &name
		changed = append(changed, keyMemberName)
	}
	if b.Has(keyPin) {
		pin := b.String(keyPin)
		if pin == "" {
			return upd, nil, apierrors.Invalid("pin cannot be empty")
		}
		if pin != existing.Pin {
			if err := h.checkPin(ctx, pin); err != nil {
				return upd, nil, err
			}
		}
		upd.Pin = &pin
		changed = append(changed, keyPin)
	}

	start, end := existing.StartPin, existing.EndPin
	if b.Has(keyStartPin) {
		t, err := parseDate(keyStartPin, b.String(keyStartPin))
		if err != nil {
			return upd, nil, err
		}
		start = t
		upd.StartPin = &t
		changed = append(changed, keyStartPin)
	}
	if b.Has(keyEndPin) {
		t, err := parseDate(keyEndPin, b.String(keyEndPin))
		if err != nil {
			return upd, nil, err
		}
		end = t
		upd.EndPin = &t
		changed = append(changed, keyEndPin)
	}
	if err := checkRange(start, end); err != nil {
		return upd, nil, err
	}

	if n, ok, err := b.Int(keyPinOrder); err != nil {
		return upd, nil, err
	} else if ok {
		upd.PinOrder = &n
		changed = append(changed, keyPinOrder)
	}
	if v, ok, err := b.Bool(keyEnabled); err != nil {
		return upd, nil, err
	} else if ok {
		upd.Enabled = &v
		changed = append(changed, keyEnabled)
	}
	return upd, changed, nil
}

// HandleDelete handles DELETE /api/members/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete member", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete member")
	defer cancel()

	existing, err := h.Members.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete member", err)
		return
	}
	n, err := h.Members.Delete(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete member", err)
		return
	}
	if n == 0 {
		h.ErrLog.Respond(w, r, "delete member", memberstore.ErrNotFound)
		return
	}

	actor, _ := auth.CurrentAdmin(r)
	h.AuditLog.MemberDeleted(ctx, r, actor, id, existing.MemberID)

	respond.OK(w, respond.Message{Message: "Deleted"})
}

// HandleToggle handles PUT /api/members/{id}/toggle.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "toggle member", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "toggle member")
	defer cancel()

	m, err := h.Members.ToggleEnabled(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "toggle member", err)
		return
	}

	actor, _ := auth.CurrentAdmin(r)
	h.AuditLog.MemberToggled(ctx, r, actor, m.ID, m.Enabled)

	msg := "Member disabled"
	if m.Enabled {
		msg = "Member enabled"
	}
	respond.OK(w, toggleResponse{Message: msg, Member: m})
}

// internal/app/features/members/create.go
package members

import (
	"net/http"

	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	memberstore "github.com/phearom922/wall-of-fame/internal/app/store/members"
	"github.com/phearom922/wall-of-fame/internal/app/system/auth"
	"github.com/phearom922/wall-of-fame/internal/app/system/reqbody"
	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
	"github.com/phearom922/wall-of-fame/internal/domain/models"
)

// HandleCreate handles POST /api/members.
//
// Body: JSON, or multipart with an optional "image" file.
// Required: memberId, memberName, pin, startPin, endPin.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	b, err := reqbody.Parse(w, r, imageField, h.MaxBody)
	if err != nil {
		h.ErrLog.Respond(w, r, "create member", err)
		return
	}
	defer b.Close()

	memberID := b.String(keyMemberID)
	name := b.String(keyMemberName)
	pin := b.String(keyPin)
	if memberID == "" || name == "" || pin == "" || b.String(keyStartPin) == "" || b.String(keyEndPin) == "" {
		h.ErrLog.Respond(w, r, "create member",
			apierrors.Invalid("memberId, memberName, pin, startPin and endPin are required"))
		return
	}
	start, err := parseDate(keyStartPin, b.String(keyStartPin))
	if err != nil {
		h.ErrLog.Respond(w, r, "create member", err)
		return
	}
	end, err := parseDate(keyEndPin, b.String(keyEndPin))
	if err != nil {
		h.ErrLog.Respond(w, r, "create member", err)
		return
	}
	if err := checkRange(start, end); err != nil {
		h.ErrLog.Respond(w, r, "create member", err)
		return
	}
	pinOrder, _, err := b.Int(keyPinOrder)
	if err != nil {
		h.ErrLog.Respond(w, r, "create member", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create member")
	defer cancel()

	if err := h.checkPin(ctx, pin); err != nil {
		h.ErrLog.Respond(w, r, "create member", err)
		return
	}

	// Checked before the image is stored so a rejected create leaves no upload behind.
	taken, err := h.Members.MemberIDExists(ctx, memberID)
	if err != nil {
		h.ErrLog.Respond(w, r, "create member", err)
		return
	}
	if taken {
		h.ErrLog.Respond(w, r, "create member", memberstore.ErrDuplicateMemberID)
		return
	}

	m := models.Member{
		MemberID:   memberID,
		MemberName: name,
		Pin:        pin,
		PinOrder:   pinOrder,
		StartPin:   start,
		EndPin:     end,
	}
	url, _, err := h.imageURL(ctx, b)
	if err != nil {
		h.ErrLog.Respond(w, r, "create member", err)
		return
	}
	if url != "" {
		m.ImageURL = &url
	}

	created, err := h.Members.Create(ctx, m)
	if err != nil {
		h.ErrLog.Respond(w, r, "create member", err)
		return
	}

	actor, _ := auth.CurrentAdmin(r)
	h.AuditLog.MemberCreated(ctx, r, actor, created.ID, created.MemberID, created.Pin)

	respond.Created(w, created)
}

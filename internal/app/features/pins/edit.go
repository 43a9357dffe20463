// internal/app/features/pins/edit.go
package pins

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	pinstore "github.com/phearom922/wall-of-fame/internal/app/store/pins"
	"github.com/phearom922/wall-of-fame/internal/app/system/auth"
	"github.com/phearom922/wall-of-fame/internal/app/system/imagestore"
	"github.com/phearom922/wall-of-fame/internal/app/system/reorder"
	"github.com/phearom922/wall-of-fame/internal/app/system/reqbody"
	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
	"github.com/phearom922/wall-of-fame/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	keyName    = "name"
	keyRank    = "rank"
	keyColor   = "color"
	keyLogoURL = "logoUrl"

	logoField = "logo"

	maxReorderBody = 1 << 20
)

type reorderResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

func pinIDParam(r *http.Request) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		return primitive.NilObjectID, pinstore.ErrNotFound
	}
	return oid, nil
}

// logoURL returns the URL of an uploaded logo, or the logoUrl field when no
// file was sent. set is false when the body carries neither.
func (h *Handler) logoURL(ctx context.Context, b *reqbody.Body) (url string, set bool, err error) {
	if f, hdr, ok := b.File(); ok {
		url, err := imagestore.Upload(ctx, h.Images, imagestore.PinLogos, hdr.Filename, f, hdr.Size)
		if err != nil {
			return "", false, err
		}
		return url, true, nil
	}
	if _, ok := b.Lookup(keyLogoURL); ok {
		return b.String(keyLogoURL), true, nil
	}
	return "", false, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// HandleCreate handles POST /api/pins.
//
// Body: JSON, or multipart with an optional "logo" file.
// Required: name, rank. Optional: color, logoUrl.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	b, err := reqbody.Parse(w, r, logoField, h.MaxBody)
	if err != nil {
		h.ErrLog.Respond(w, r, "create pin", err)
		return
	}
	defer b.Close()

	name := b.String(keyName)
	if name == "" {
		h.ErrLog.Respond(w, r, "create pin", apierrors.Invalid("name is required"))
		return
	}
	rank, ok, err := b.Int(keyRank)
	if err != nil {
		h.ErrLog.Respond(w, r, "create pin", err)
		return
	}
	if !ok {
		h.ErrLog.Respond(w, r, "create pin", apierrors.Invalid("rank is required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create pin")
	defer cancel()

	exists, err := h.Pins.NameExists(ctx, name)
	if err != nil {
		h.ErrLog.Respond(w, r, "create pin", err)
		return
	}
	if exists {
		h.ErrLog.Respond(w, r, "create pin", pinstore.ErrDuplicatePin)
		return
	}

	logo, _, err := h.logoURL(ctx, b)
	if err != nil {
		h.ErrLog.Respond(w, r, "create pin", err)
		return
	}

	pin, err := h.Pins.Create(ctx, models.Pin{
		Name:    name,
		Rank:    rank,
		Color:   optional(b.String(keyColor)),
		LogoURL: optional(logo),
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "create pin", err)
		return
	}

	actor, _ := auth.CurrentAdmin(r)
	h.AuditLog.PinCreated(ctx, r, actor, pin.ID, pin.Name)

	respond.Created(w, pin)
}

// HandleUpdate handles PUT /api/pins/{id}. Only the fields present change.
// Renaming to the pin's own name is allowed; to another pin's name is 409.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pinIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "update pin", err)
		return
	}
	b, err := reqbody.Parse(w, r, logoField, h.MaxBody)
	if err != nil {
		h.ErrLog.Respond(w, r, "update pin", err)
		return
	}
	defer b.Close()

	var (
		upd     pinstore.Update
		changed []string
	)
	if b.Has(keyName) {
		name := b.String(keyName)
		if name == "" {
			h.ErrLog.Respond(w, r, "update pin", apierrors.Invalid("name cannot be empty"))
			return
		}
		upd.Name = &name
		changed = append(changed, keyName)
	}
	if n, ok, err := b.Int(keyRank); err != nil {
		h.ErrLog.Respond(w, r, "update pin", err)
		return
	} else if ok {
		upd.Rank = &n
		changed = append(changed, keyRank)
	}
	if b.Has(keyColor) {
		c := b.String(keyColor)
		upd.Color = &c
		changed = append(changed, keyColor)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update pin")
	defer cancel()

	if _, err := h.Pins.GetByID(ctx, id); err != nil {
		h.ErrLog.Respond(w, r, "update pin", err)
		return
	}
	if upd.Name != nil {
		taken, err := h.Pins.NameExistsForOther(ctx, *upd.Name, id)
		if err != nil {
			h.ErrLog.Respond(w, r, "update pin", err)
			return
		}
		if taken {
			h.ErrLog.Respond(w, r, "update pin", pinstore.ErrDuplicatePin)
			return
		}
	}

	logo, set, err := h.logoURL(ctx, b)
	if err != nil {
		h.ErrLog.Respond(w, r, "update pin", err)
		return
	}
	if set {
		upd.LogoURL = &logo
		changed = append(changed, keyLogoURL)
	}

	pin, err := h.Pins.Update(ctx, id, upd)
	if err != nil {
		h.ErrLog.Respond(w, r, "update pin", err)
		return
	}

	actor, _ := auth.CurrentAdmin(r)
	h.AuditLog.PinUpdated(ctx, r, actor, pin.ID, strings.Join(changed, ","))

	respond.OK(w, pin)
}

// HandleDelete handles DELETE /api/pins/{id}. Members naming the pin are kept
// and sort as unranked afterwards.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pinIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete pin", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete pin")
	defer cancel()

	pin, err := h.Pins.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete pin", err)
		return
	}
	n, err := h.Pins.Delete(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete pin", err)
		return
	}
	if n == 0 {
		h.ErrLog.Respond(w, r, "delete pin", pinstore.ErrNotFound)
		return
	}

	actor, _ := auth.CurrentAdmin(r)
	h.AuditLog.PinDeleted(ctx, r, actor, id, pin.Name)

	respond.OK(w, respond.Message{Message: "Deleted"})
}

// HandleReorder handles PUT /api/pins/reorder.
//
// Body: { "items": [{ "id": "...", "rank": 1 }, ...] }
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorder.PinsRequest
	if err := reqbody.DecodeJSON(w, r, maxReorderBody, &req); err != nil {
		h.ErrLog.Respond(w, r, "reorder pins", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "reorder pins")
	defer cancel()

	n, err := h.Reorder.Pins(ctx, req)
	if err != nil {
		h.ErrLog.Respond(w, r, "reorder pins", err)
		return
	}

	actor, _ := auth.CurrentAdmin(r)
	h.AuditLog.PinsReordered(ctx, r, actor, n)

	respond.OK(w, reorderResponse{Message: "Reordered", Updated: n})
}

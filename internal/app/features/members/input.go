// internal/app/features/members/input.go
package members

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	memberstore "github.com/phearom922/wall-of-fame/internal/app/store/members"
	"github.com/phearom922/wall-of-fame/internal/app/system/imagestore"
	"github.com/phearom922/wall-of-fame/internal/app/system/rank"
	"github.com/phearom922/wall-of-fame/internal/app/system/reqbody"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Body keys. JSON and form bodies use the same names.
const (
	keyMemberID   = "memberId"
	keyMemberName = "memberName"
	keyPin        = "pin"
	keyPinOrder   = "pinOrder"
	keyStartPin   = "startPin"
	keyEndPin     = "endPin"
	keyImageURL   = "imageUrl"
	keyEnabled    = "enabled"

	imageField = "image"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// memberIDParam reads {id}. A malformed id can never match, so it is
// reported as not found.
func memberIDParam(r *http.Request) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		return primitive.NilObjectID, memberstore.ErrNotFound
	}
	return oid, nil
}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apierrors.Invalid("%s must be a date (YYYY-MM-DD or RFC 3339)", field)
}

func checkRange(start, end time.Time) error {
	if end.Before(start) {
		return apierrors.Invalid("endPin must not be before startPin")
	}
	return nil
}

// checkPin accepts names in the pin registry and the built-in tiers.
func (h *Handler) checkPin(ctx context.Context, name string) error {
	if rank.IsDefault(name) {
		return nil
	}
	ok, err := h.Pins.NameExists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return apierrors.Invalid("unknown pin %q", name)
	}
	return nil
}

// imageURL returns the URL of an uploaded image, or the imageUrl field when
// no file was sent. set is false when the body carries neither.
func (h *Handler) imageURL(ctx context.Context, b *reqbody.Body) (url string, set bool, err error) {
	if f, hdr, ok := b.File(); ok {
		url, err := imagestore.Upload(ctx, h.Images, imagestore.MemberImages, hdr.Filename, f, hdr.Size)
		if err != nil {
			return "", false, err
		}
		return url, true, nil
	}
	if _, ok := b.Lookup(keyImageURL); ok {
		return b.String(keyImageURL), true, nil
	}
	return "", false, nil
}

// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	"github.com/phearom922/wall-of-fame/internal/app/store/audit"
	"github.com/phearom922/wall-of-fame/internal/app/system/paging"
	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// listItem is an event with the acting admin's username resolved.
type listItem struct {
	audit.Event
	ActorName string `json:"actorName,omitempty"`
}

type listPage struct {
	Data       []listItem  `json:"data"`
	Pagination paging.Info `json:"pagination"`
}

// ServeList handles GET /api/audit, newest first.
//
// Query: category, eventType, actorId, targetId, startDate, endDate
// (YYYY-MM-DD, endDate inclusive), page, limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "audit log list", err)
		return
	}
	pg := paging.Parse(r)
	filter.Limit = int64(pg.Limit)
	filter.Offset = pg.Skip()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.Respond(w, r, "audit log list", err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.Respond(w, r, "audit log count", err)
		return
	}

	items := h.withActorNames(ctx, events)
	respond.OK(w, listPage{Data: items, Pagination: paging.NewInfo(pg, total)})
}

// ServeFailedLogins handles GET /api/audit/failed-logins.
//
// Query: since (Go duration, default 24h), limit.
func (h *Handler) ServeFailedLogins(w http.ResponseWriter, r *http.Request) {
	window := 24 * time.Hour
	if v := strings.TrimSpace(query.Get(r, "since")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			h.ErrLog.Respond(w, r, "failed logins", apierrors.Invalid("since must be a positive duration such as 24h"))
			return
		}
		window = d
	}
	limit := paging.Parse(r).Limit

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "failed logins")
	defer cancel()

	events, err := h.Events.GetFailedLogins(ctx, time.Now().UTC().Add(-window), int64(limit))
	if err != nil {
		h.ErrLog.Respond(w, r, "failed logins", err)
		return
	}
	respond.OK(w, map[string]interface{}{"data": h.withActorNames(ctx, events)})
}

// withActorNames attaches usernames for the acting admins. A lookup failure
// leaves the names blank.
func (h *Handler) withActorNames(ctx context.Context, events []audit.Event) []listItem {
	actorIDs := make([]primitive.ObjectID, 0, len(events))
	seen := make(map[primitive.ObjectID]bool)
	for _, e := range events {
		if e.ActorID != nil && !seen[*e.ActorID] {
			seen[*e.ActorID] = true
			actorIDs = append(actorIDs, *e.ActorID)
		}
	}
	var names map[primitive.ObjectID]string
	if len(actorIDs) > 0 {
		var err error
		names, err = h.Admins.Usernames(ctx, actorIDs)
		if err != nil {
			h.Log.Warn("failed to resolve admin names for audit log", zap.Error(err))
		}
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{Event: e}
		if e.ActorID != nil {
			item.ActorName = names[*e.ActorID]
		}
		items = append(items, item)
	}
	return items
}

func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	f := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "eventType"),
	}

	var err error
	if f.ActorID, err = objectIDParam(r, "actorId"); err != nil {
		return f, err
	}
	if f.TargetID, err = objectIDParam(r, "targetId"); err != nil {
		return f, err
	}

	if v := strings.TrimSpace(query.Get(r, "startDate")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apierrors.Invalid("startDate must be YYYY-MM-DD")
		}
		f.StartTime = &t
	}
	if v := strings.TrimSpace(query.Get(r, "endDate")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apierrors.Invalid("endDate must be YYYY-MM-DD")
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &endOfDay
	}
	return f, nil
}

func objectIDParam(r *http.Request, key string) (*primitive.ObjectID, error) {
	v := query.Get(r, key)
	if v == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(v)
	if err != nil {
		return nil, apierrors.Invalid("%s must be an object id", key)
	}
	return &oid, nil
}

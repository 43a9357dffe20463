package audit_test

import (
	"testing"
	"time"

	"github.com/phearom922/wall-of-fame/internal/app/store/audit"
	"github.com/phearom922/wall-of-fame/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	adminID := primitive.NewObjectID()
	event := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   &adminID,
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
	}

	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{ActorID: &adminID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	member := primitive.NewObjectID()
	pin := primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)

	events := []audit.Event{
		{Category: audit.CategoryAdmin, EventType: audit.EventMemberCreated, ActorID: &actor, TargetID: &member, Success: true, Timestamp: base},
		{Category: audit.CategoryAdmin, EventType: audit.EventMemberToggled, ActorID: &actor, TargetID: &member, Success: true, Timestamp: base.Add(time.Minute)},
		{Category: audit.CategoryAdmin, EventType: audit.EventPinCreated, ActorID: &actor, TargetID: &pin, Success: true, Timestamp: base.Add(2 * time.Minute)},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, Success: false, Timestamp: base.Add(3 * time.Minute)},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	since := base.Add(90 * time.Second)
	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 4},
		{"by actor", audit.QueryFilter{ActorID: &actor}, 3},
		{"by target", audit.QueryFilter{TargetID: &member}, 2},
		{"by category", audit.QueryFilter{Category: audit.CategoryAuth}, 1},
		{"by event type", audit.QueryFilter{EventType: audit.EventPinCreated}, 1},
		{"since", audit.QueryFilter{StartTime: &since}, 2},
		{"limit", audit.QueryFilter{Limit: 2}, 2},
		{"offset", audit.QueryFilter{Offset: 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, len(got))
			}
		})
	}

	count, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAdmin})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 admin events, got %d", count)
	}

	recent, err := store.Query(ctx, audit.QueryFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if recent[0].EventType != audit.EventLoginFailedWrongPassword {
		t.Errorf("expected newest event first, got %s", recent[0].EventType)
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	logs := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Success: true, Timestamp: now},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedAdminNotFound, Timestamp: now},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedRateLimit, Timestamp: now},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, Timestamp: now.Add(-48 * time.Hour)},
	}
	for _, e := range logs {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	failed, err := store.GetFailedLogins(ctx, now.Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetFailedLogins failed: %v", err)
	}
	if len(failed) != 2 {
		t.Errorf("expected 2 recent failures, got %d", len(failed))
	}
}

func TestStore_EnsureIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	// Idempotent.
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("second EnsureIndexes failed: %v", err)
	}
}

package reorder_test

import (
	"errors"
	"strings"
	"testing"

	memberstore "github.com/phearom922/wall-of-fame/internal/app/store/members"
	pinstore "github.com/phearom922/wall-of-fame/internal/app/store/pins"
	"github.com/phearom922/wall-of-fame/internal/app/system/reorder"
	"github.com/phearom922/wall-of-fame/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestMembers_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	engine := reorder.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gold := fx.CreateMember(ctx, "g1", "Gina", "Gold", testutil.MemberOpts{PinOrder: 4})
	ruby := fx.CreateMember(ctx, "r1", "Rita", "Ruby", testutil.MemberOpts{PinOrder: 7})

	tests := []struct {
		name    string
		req     reorder.MembersRequest
		wantMsg string
	}{
		{"missing pin", reorder.MembersRequest{Pin: "  ", Items: []reorder.MemberItem{{ID: gold.ID.Hex()}}}, "required"},
		{"no items", reorder.MembersRequest{Pin: "Gold"}, "required"},
		{"bad id", reorder.MembersRequest{Pin: "Gold", Items: []reorder.MemberItem{{ID: "nope"}}}, "invalid member id"},
		{"duplicate id", reorder.MembersRequest{Pin: "Gold", Items: []reorder.MemberItem{
			{ID: gold.ID.Hex(), PinOrder: 0}, {ID: gold.ID.Hex(), PinOrder: 1},
		}}, "more than once"},
		{"unknown id", reorder.MembersRequest{Pin: "Gold", Items: []reorder.MemberItem{
			{ID: gold.ID.Hex(), PinOrder: 0}, {ID: primitive.NewObjectID().Hex(), PinOrder: 1},
		}}, "not found"},
		{"pin mismatch", reorder.MembersRequest{Pin: "Gold", Items: []reorder.MemberItem{
			{ID: gold.ID.Hex(), PinOrder: 0}, {ID: ruby.ID.Hex(), PinOrder: 1},
		}}, ruby.ID.Hex()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Members(ctx, tt.req)
			var ve *reorder.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Msg, tt.wantMsg) {
				t.Errorf("message %q does not mention %q", ve.Msg, tt.wantMsg)
			}
		})
	}

	// No batch above may have written anything.
	store := memberstore.New(db)
	for id, want := range map[primitive.ObjectID]int{gold.ID: 4, ruby.ID: 7} {
		m, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if m.PinOrder != want {
			t.Errorf("member %s pinOrder = %d, want %d", m.MemberID, m.PinOrder, want)
		}
	}
}

func TestMembers_Applies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	engine := reorder.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateMember(ctx, "a", "A", "Gold", testutil.MemberOpts{PinOrder: 0})
	b := fx.CreateMember(ctx, "b", "B", "Gold", testutil.MemberOpts{PinOrder: 1})
	c := fx.CreateMember(ctx, "c", "C", "Gold", testutil.MemberOpts{PinOrder: 2})

	n, err := engine.Members(ctx, reorder.MembersRequest{Pin: "Gold", Items: []reorder.MemberItem{
		{ID: c.ID.Hex(), PinOrder: 0},
		{ID: a.ID.Hex(), PinOrder: 1},
		{ID: b.ID.Hex(), PinOrder: 2},
	}})
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if n != 3 {
		t.Errorf("updated = %d, want 3", n)
	}

	store := memberstore.New(db)
	for id, want := range map[primitive.ObjectID]int{c.ID: 0, a.ID: 1, b.ID: 2} {
		m, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if m.PinOrder != want {
			t.Errorf("member %s pinOrder = %d, want %d", m.MemberID, m.PinOrder, want)
		}
	}
}

func TestPins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	engine := reorder.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gold := fx.CreatePin(ctx, "Gold", 11)
	silver := fx.CreatePin(ctx, "Silver", 12)

	if _, err := engine.Pins(ctx, reorder.PinsRequest{}); err == nil {
		t.Error("expected error for empty items")
	}
	_, err := engine.Pins(ctx, reorder.PinsRequest{Items: []reorder.PinItem{{ID: "bad", Rank: 1}}})
	var ve *reorder.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for bad id, got %v", err)
	}

	n, err := engine.Pins(ctx, reorder.PinsRequest{Items: []reorder.PinItem{
		{ID: silver.ID.Hex(), Rank: 1},
		{ID: gold.ID.Hex(), Rank: 2},
	}})
	if err != nil {
		t.Fatalf("Pins failed: %v", err)
	}
	if n != 2 {
		t.Errorf("updated = %d, want 2", n)
	}

	ranks, err := pinstore.New(db).RankMap(ctx)
	if err != nil {
		t.Fatalf("RankMap failed: %v", err)
	}
	if ranks["Silver"] != 1 || ranks["Gold"] != 2 {
		t.Errorf("unexpected ranks: %v", ranks)
	}
}

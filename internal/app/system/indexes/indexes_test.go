package indexes_test

import (
	"testing"

	"github.com/phearom922/wall-of-fame/internal/app/system/indexes"
	"github.com/phearom922/wall-of-fame/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexInfo(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", coll, err)
	}
	defer cur.Close(ctx)

	// name -> unique
	out := map[string]bool{}
	for cur.Next(ctx) {
		var idx struct {
			Name   string `bson:"name"`
			Unique bool   `bson:"unique"`
		}
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("decode index: %v", err)
		}
		out[idx.Name] = idx.Unique
	}
	return out
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		coll   string
		name   string
		unique bool
	}{
		{"members", "uniq_members_member_id", true},
		{"members", "idx_members_pin_order", false},
		{"members", "idx_members_end_pin", false},
		{"members", "idx_members_member_name", false},
		{"members", "idx_members_created_at", false},
		{"pins", "uniq_pins_name", true},
		{"pins", "idx_pins_rank_name", false},
		{"admins", "uniq_admins_username", true},
	}
	cache := map[string]map[string]bool{}
	for _, tt := range tests {
		t.Run(tt.coll+"/"+tt.name, func(t *testing.T) {
			info, ok := cache[tt.coll]
			if !ok {
				info = indexInfo(t, db, tt.coll)
				cache[tt.coll] = info
			}
			unique, exists := info[tt.name]
			if !exists {
				t.Fatalf("index %s missing on %s", tt.name, tt.coll)
			}
			if unique != tt.unique {
				t.Errorf("unique = %v, want %v", unique, tt.unique)
			}
		})
	}
}

func TestEnsureAll_RenamesMismatchedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys as uniq_pins_name but under another name and not unique.
	_, err := db.Collection("pins").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("legacy_name"),
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	info := indexInfo(t, db, "pins")
	if _, ok := info["legacy_name"]; ok {
		t.Error("legacy index should have been dropped")
	}
	if !info["uniq_pins_name"] {
		t.Error("uniq_pins_name should exist and be unique")
	}
}

func TestEnsureAll_ReportsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	docs := []interface{}{bson.M{"username": "dup"}, bson.M{"username": "dup"}}
	if _, err := db.Collection("admins").InsertMany(ctx, docs); err != nil {
		t.Fatalf("insert duplicates: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err == nil {
		t.Error("expected error when unique index cannot be built")
	}
}

package adminstore_test

import (
	"errors"
	"testing"

	adminstore "github.com/phearom922/wall-of-fame/internal/app/store/admins"
	"github.com/phearom922/wall-of-fame/internal/app/system/indexes"
	"github.com/phearom922/wall-of-fame/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, " admin ", "hash")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.Username != "admin" {
		t.Errorf("expected trimmed username, got %q", a.Username)
	}

	byName, err := store.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if byName.ID != a.ID || byName.PasswordHash != "hash" {
		t.Errorf("unexpected admin: %+v", byName)
	}

	byID, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Username != "admin" {
		t.Errorf("unexpected username %q", byID.Username)
	}
}

func TestStore_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByUsername(ctx, "nobody"); !errors.Is(err, adminstore.ErrNotFound) {
		t.Errorf("GetByUsername: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, adminstore.ErrNotFound) {
		t.Errorf("GetByID: expected ErrNotFound, got %v", err)
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := adminstore.New(db)

	if _, err := store.Create(ctx, "admin", "a"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, "admin", "b"); !errors.Is(err, adminstore.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_EnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.EnsureAdmin(ctx, "admin", "first")
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if !created {
		t.Error("expected admin to be created")
	}

	created, err = store.EnsureAdmin(ctx, "admin", "second")
	if err != nil {
		t.Fatalf("second EnsureAdmin failed: %v", err)
	}
	if created {
		t.Error("expected existing admin to be kept")
	}

	a, err := store.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if a.PasswordHash != "first" {
		t.Errorf("existing password was overwritten: %q", a.PasswordHash)
	}
}

func TestStore_Usernames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, "alice", "h")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := store.Create(ctx, "bob", "h")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	ghost := primitive.NewObjectID()

	got, err := store.Usernames(ctx, []primitive.ObjectID{a.ID, b.ID, ghost})
	if err != nil {
		t.Fatalf("Usernames failed: %v", err)
	}
	if len(got) != 2 || got[a.ID] != "alice" || got[b.ID] != "bob" {
		t.Errorf("Usernames: got %v", got)
	}

	empty, err := store.Usernames(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("Usernames(nil): got %v, %v", empty, err)
	}
}

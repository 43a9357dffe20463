package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phearom922/wall-of-fame/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreatePin inserts a pin category with the given name and rank.
func (f *Fixtures) CreatePin(ctx context.Context, name string, rank int) models.Pin {
	f.t.Helper()

	now := time.Now().UTC()
	pin := models.Pin{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Rank:      rank,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("pins").InsertOne(ctx, pin); err != nil {
		f.t.Fatalf("CreatePin(%q): %v", name, err)
	}
	return pin
}

// MemberOpts overrides fixture defaults in CreateMember.
type MemberOpts struct {
	PinOrder int
	StartPin time.Time
	EndPin   time.Time // zero means one year from now
	Disabled bool
}

// CreateMember inserts a member in the given pin.
func (f *Fixtures) CreateMember(ctx context.Context, memberID, name, pin string, opts MemberOpts) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	start := opts.StartPin
	if start.IsZero() {
		start = now.AddDate(-1, 0, 0)
	}
	end := opts.EndPin
	if end.IsZero() {
		end = now.AddDate(1, 0, 0)
	}
	m := models.Member{
		ID:         primitive.NewObjectID(),
		MemberID:   memberID,
		MemberName: name,
		Pin:        pin,
		PinOrder:   opts.PinOrder,
		StartPin:   start.Truncate(time.Millisecond),
		EndPin:     end.Truncate(time.Millisecond),
		Enabled:    !opts.Disabled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("CreateMember(%q): %v", memberID, err)
	}
	return m
}

// CreateAdmin inserts an admin whose password hashes to password.
func (f *Fixtures) CreateAdmin(ctx context.Context, username, password string) models.Admin {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	a := models.Admin{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("admins").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("CreateAdmin(%q): %v", username, err)
	}
	return a
}

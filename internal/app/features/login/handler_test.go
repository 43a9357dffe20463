package login_test

import (
	"net/http"
	"testing"
	"time"

	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	"github.com/phearom922/wall-of-fame/internal/app/features/login"
	"github.com/phearom922/wall-of-fame/internal/app/store/audit"
	"github.com/phearom922/wall-of-fame/internal/app/system/auditlog"
	"github.com/phearom922/wall-of-fame/internal/app/system/auth"
	"github.com/phearom922/wall-of-fame/internal/app/system/ratelimit"
	"github.com/phearom922/wall-of-fame/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testSecret = "login-test-secret-login-test-secret"

func newTestHandler(t *testing.T, limiter *ratelimit.LoginLimiter) (*login.Handler, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	issuer := auth.NewIssuer(testSecret, "walloffame", time.Hour, logger)
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "off"})
	h := login.NewHandler(db, issuer, limiter, apierrors.NewErrorLogger(logger), audits, logger)
	return h, testutil.NewFixtures(t, db), db
}

func post(t *testing.T, h *login.Handler, body interface{}) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", body))
	return rec
}

func TestHandleLogin_Success(t *testing.T) {
	h, fx, db := newTestHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := fx.CreateAdmin(ctx, "admin", "s3cret-pass")

	rec := post(t, h, map[string]string{"username": " admin ", "password": "s3cret-pass"})
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	rec.DecodeJSON(t, &body)
	if body.Token == "" {
		t.Fatal("expected a token")
	}
	id, err := h.Issuer.Parse(body.Token)
	if err != nil {
		t.Fatalf("Parse token: %v", err)
	}
	if id != admin.ID {
		t.Errorf("token admin id: got %s, want %s", id.Hex(), admin.ID.Hex())
	}
	if time.Until(body.ExpiresAt) <= 0 {
		t.Errorf("expiresAt in the past: %v", body.ExpiresAt)
	}

	n, err := db.Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": audit.EventLoginSuccess})
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if n != 1 {
		t.Errorf("login success events: got %d, want 1", n)
	}
}

func TestHandleLogin_Failures(t *testing.T) {
	h, fx, db := newTestHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateAdmin(ctx, "admin", "s3cret-pass")

	tests := []struct {
		name  string
		body  interface{}
		code  int
		msg   string
		event string
	}{
		{"unknown admin", map[string]string{"username": "ghost", "password": "x"}, http.StatusNotFound, "Admin not found", audit.EventLoginFailedAdminNotFound},
		{"wrong password", map[string]string{"username": "admin", "password": "nope"}, http.StatusUnauthorized, "Invalid password", audit.EventLoginFailedWrongPassword},
		{"missing password", map[string]string{"username": "admin"}, http.StatusBadRequest, "username and password are required", ""},
		{"not an object", "admin", http.StatusBadRequest, "Invalid request body", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.body)
			rec.AssertStatus(t, tt.code)
			rec.AssertContains(t, tt.msg)
			if tt.event == "" {
				return
			}
			n, err := db.Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": tt.event})
			if err != nil {
				t.Fatalf("count audit: %v", err)
			}
			if n != 1 {
				t.Errorf("%s events: got %d, want 1", tt.event, n)
			}
		})
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer limiter.Stop()
	h, fx, _ := newTestHandler(t, limiter)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateAdmin(ctx, "admin", "s3cret-pass")

	for i := 0; i < 2; i++ {
		post(t, h, map[string]string{"username": "admin", "password": "wrong"}).AssertStatus(t, http.StatusUnauthorized)
	}
	rec := post(t, h, map[string]string{"username": "admin", "password": "s3cret-pass"})
	rec.AssertStatus(t, http.StatusTooManyRequests)
}

func TestHandleLogin_SuccessResetsUsernameWindow(t *testing.T) {
	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer limiter.Stop()
	h, fx, _ := newTestHandler(t, limiter)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateAdmin(ctx, "admin", "s3cret-pass")

	post(t, h, map[string]string{"username": "admin", "password": "wrong"}).AssertStatus(t, http.StatusUnauthorized)
	post(t, h, map[string]string{"username": "admin", "password": "s3cret-pass"}).AssertStatus(t, http.StatusOK)
	post(t, h, map[string]string{"username": "admin", "password": "wrong"}).AssertStatus(t, http.StatusUnauthorized)
	post(t, h, map[string]string{"username": "admin", "password": "s3cret-pass"}).AssertStatus(t, http.StatusOK)
}

func TestRoutes(t *testing.T) {
	h, fx, _ := newTestHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateAdmin(ctx, "admin", "s3cret-pass")

	r := login.Routes(h)
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{"username": "admin", "password": "s3cret-pass"}))
	rec.AssertStatus(t, http.StatusOK)
}

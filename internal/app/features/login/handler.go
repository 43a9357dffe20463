// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	adminstore "github.com/phearom922/wall-of-fame/internal/app/store/admins"
	"github.com/phearom922/wall-of-fame/internal/app/system/auditlog"
	"github.com/phearom922/wall-of-fame/internal/app/system/auth"
	"github.com/phearom922/wall-of-fame/internal/app/system/authutil"
	"github.com/phearom922/wall-of-fame/internal/app/system/ratelimit"
	"github.com/phearom922/wall-of-fame/internal/app/system/reqbody"
	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxLoginBody = 64 << 10

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Admins   *adminstore.Store
	Issuer   *auth.Issuer
	Limiter  *ratelimit.LoginLimiter
}

func NewHandler(db *mongo.Database, issuer *auth.Issuer, limiter *ratelimit.LoginLimiter, errLog *apierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Admins:   adminstore.New(db),
		Issuer:   issuer,
		Limiter:  limiter,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HandleLogin handles POST /api/auth/login.
//
// Body: { "username": "...", "password": "..." }
// 200 { "token": "...", "expiresAt": "..." }, 404 unknown username,
// 401 wrong password, 429 too many attempts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := reqbody.DecodeJSON(w, r, maxLoginBody, &req); err != nil {
		h.ErrLog.Respond(w, r, "login", err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		h.ErrLog.Respond(w, r, "login", apierrors.Invalid("username and password are required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	if h.Limiter != nil {
		if ok, limitType := h.Limiter.Check(auditlog.ClientIP(r), username); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, username, limitType)
			respond.TooManyRequests(w, "Too many login attempts. Please try again later.")
			return
		}
	}

	admin, err := h.Admins.GetByUsername(ctx, username)
	if errors.Is(err, adminstore.ErrNotFound) {
		h.AuditLog.LoginFailedAdminNotFound(ctx, r, username)
		respond.NotFound(w, "Admin not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: load admin", err)
		return
	}

	if !authutil.CheckPassword(req.Password, admin.PasswordHash) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, admin.ID, admin.Username)
		respond.Unauthorized(w, "Invalid password")
		return
	}

	token, exp, err := h.Issuer.Issue(admin.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: issue token", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetUsername(username)
	}
	h.AuditLog.LoginSuccess(ctx, r, admin.ID, admin.Username)

	respond.OK(w, loginResponse{Token: token, ExpiresAt: exp})
}

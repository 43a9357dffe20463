// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/phearom922/wall-of-fame/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for login attempts.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for member and pin changes.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// ClientIP returns the first address in X-Forwarded-For, then X-Real-IP,
// then the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers under test may omit it.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) authEvent(r *http.Request, eventType string, adminID *primitive.ObjectID, success bool, reason string, details map[string]string) audit.Event {
	return audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		ActorID:       adminID,
		IP:            ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       success,
		FailureReason: reason,
		Details:       details,
	}
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, adminID primitive.ObjectID, username string) {
	l.Log(ctx, l.authEvent(r, audit.EventLoginSuccess, &adminID, true, "",
		map[string]string{"username": username}))
}

func (l *Logger) LoginFailedAdminNotFound(ctx context.Context, r *http.Request, attempted string) {
	l.Log(ctx, l.authEvent(r, audit.EventLoginFailedAdminNotFound, nil, false, "admin not found",
		map[string]string{"attempted_username": attempted}))
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, adminID primitive.ObjectID, username string) {
	l.Log(ctx, l.authEvent(r, audit.EventLoginFailedWrongPassword, &adminID, false, "wrong password",
		map[string]string{"username": username}))
}

// LoginFailedRateLimit logs a blocked attempt. limitType is "ip" or "username".
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, username, limitType string) {
	l.Log(ctx, l.authEvent(r, audit.EventLoginFailedRateLimit, nil, false, "rate limit exceeded",
		map[string]string{"attempted_username": username, "limit_type": limitType}))
}

// --- Admin Events ---

func (l *Logger) adminAction(ctx context.Context, r *http.Request, eventType string, actorID, targetID primitive.ObjectID, details map[string]string) {
	var actor *primitive.ObjectID
	if !actorID.IsZero() {
		actor = &actorID
	}
	var target *primitive.ObjectID
	if !targetID.IsZero() {
		target = &targetID
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   actor,
		TargetID:  target,
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	})
}

func (l *Logger) MemberCreated(ctx context.Context, r *http.Request, actorID, memberOID primitive.ObjectID, memberID, pin string) {
	l.adminAction(ctx, r, audit.EventMemberCreated, actorID, memberOID,
		map[string]string{"member_id": memberID, "pin": pin})
}

// MemberUpdated records an edit. fieldsChanged is a comma-separated list.
func (l *Logger) MemberUpdated(ctx context.Context, r *http.Request, actorID, memberOID primitive.ObjectID, fieldsChanged string) {
	l.adminAction(ctx, r, audit.EventMemberUpdated, actorID, memberOID,
		map[string]string{"fields_changed": fieldsChanged})
}

func (l *Logger) MemberDeleted(ctx context.Context, r *http.Request, actorID, memberOID primitive.ObjectID, memberID string) {
	l.adminAction(ctx, r, audit.EventMemberDeleted, actorID, memberOID,
		map[string]string{"member_id": memberID})
}

func (l *Logger) MemberToggled(ctx context.Context, r *http.Request, actorID, memberOID primitive.ObjectID, enabled bool) {
	l.adminAction(ctx, r, audit.EventMemberToggled, actorID, memberOID,
		map[string]string{"enabled": strconv.FormatBool(enabled)})
}

func (l *Logger) MembersReordered(ctx context.Context, r *http.Request, actorID primitive.ObjectID, pin string, updated int64) {
	l.adminAction(ctx, r, audit.EventMembersReordered, actorID, primitive.NilObjectID,
		map[string]string{"pin": pin, "updated": strconv.FormatInt(updated, 10)})
}

func (l *Logger) PinCreated(ctx context.Context, r *http.Request, actorID, pinID primitive.ObjectID, name string) {
	l.adminAction(ctx, r, audit.EventPinCreated, actorID, pinID,
		map[string]string{"name": name})
}

func (l *Logger) PinUpdated(ctx context.Context, r *http.Request, actorID, pinID primitive.ObjectID, fieldsChanged string) {
	l.adminAction(ctx, r, audit.EventPinUpdated, actorID, pinID,
		map[string]string{"fields_changed": fieldsChanged})
}

func (l *Logger) PinDeleted(ctx context.Context, r *http.Request, actorID, pinID primitive.ObjectID, name string) {
	l.adminAction(ctx, r, audit.EventPinDeleted, actorID, pinID,
		map[string]string{"name": name})
}

func (l *Logger) PinsReordered(ctx context.Context, r *http.Request, actorID primitive.ObjectID, updated int64) {
	l.adminAction(ctx, r, audit.EventPinsReordered, actorID, primitive.NilObjectID,
		map[string]string{"updated": strconv.FormatInt(updated, 10)})
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Tokens                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

// ErrInvalidToken covers malformed, badly signed and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the admin id under "id" plus the registered claims.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 admin tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// NewIssuer returns an Issuer. A non-positive ttl means DefaultTTL.
func NewIssuer(secret, issuer string, ttl time.Duration, logger *zap.Logger) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
		log:    logger,
	}
}

// TTL reports the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for adminID and returns it with its expiry.
func (i *Issuer) Issue(adminID primitive.ObjectID) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := &Claims{
		ID: adminID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   adminID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

// Parse verifies the signature, algorithm, issuer and expiry of token and
// returns the admin id it names.
func (i *Issuer) Parse(token string) (primitive.ObjectID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return primitive.NilObjectID, ErrInvalidToken
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return id, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-admin helper                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentAdminKey ctxKey = "currentAdmin"

// CurrentAdmin returns the admin id placed in context by RequireAdmin.
func CurrentAdmin(r *http.Request) (primitive.ObjectID, bool) {
	id, ok := r.Context().Value(currentAdminKey).(primitive.ObjectID)
	return id, ok
}

// WithAdmin returns r carrying adminID as the signed-in admin.
func WithAdmin(r *http.Request, adminID primitive.ObjectID) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentAdminKey, adminID))
}

// RequireAdmin rejects requests without a valid "Authorization: Bearer"
// token with 401 before they reach the wrapped handler.
func (i *Issuer) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respond.Unauthorized(w, "No token provided")
			return
		}
		id, err := i.Parse(token)
		if err != nil {
			if i.log != nil {
				i.log.Debug("rejected bearer token", zap.String("path", r.URL.Path), zap.Error(err))
			}
			respond.Unauthorized(w, "Invalid token")
			return
		}
		next.ServeHTTP(w, WithAdmin(r, id))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

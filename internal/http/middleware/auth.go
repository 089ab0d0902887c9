package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tendant/simple-crm-core/internal/httputil"
	"github.com/tendant/simple-crm-core/pkg/ident"
)

type contextKey string

const (
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// TenantIDKey is the context key for the authorized tenant ID.
	TenantIDKey contextKey = "tenant_id"
)

// TokenClaims are the claims this service reads from IdP-issued tokens.
// The identity provider owns registration, login and tenant membership;
// we only verify its signature and trust the tenant claim.
type TokenClaims struct {
	TenantID string `json:"tid"`
	jwt.RegisteredClaims
}

// AuthConfig holds token verification configuration.
type AuthConfig struct {
	// Secret is the HMAC key shared with the identity provider.
	Secret []byte
	// Issuer, when set, must match the token's iss claim.
	Issuer string
}

// Auth creates middleware that validates bearer tokens from the external
// identity provider and puts the caller's user and tenant IDs in the
// request context. Every tenant-scoped handler sits behind this; there
// is no other way to obtain a tenant ID.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	parseOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if cfg.Issuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(cfg.Issuer))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}

			if tokenString == "" {
				httputil.Error(w, http.StatusUnauthorized, "missing authorization")
				return
			}

			claims := &TokenClaims{}
			_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				return cfg.Secret, nil
			}, parseOpts...)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			// Identifiers in tokens use the canonical wire format.
			userID, err := ident.ParseCanonical(claims.Subject)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid token subject")
				return
			}
			tenantID, err := ident.ParseCanonical(claims.TenantID)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid tenant claim")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, TenantIDKey, tenantID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the user ID from the request context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTenantID extracts the tenant ID from the request context.
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

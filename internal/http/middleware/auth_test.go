package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSecret = []byte("test-secret-key-for-auth-middleware")

func signToken(t *testing.T, sub, tid string, opts ...func(*TokenClaims)) string {
	t.Helper()
	claims := &TokenClaims{
		TenantID: tid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "test-idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	for _, opt := range opts {
		opt(claims)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuth(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + signToken(t, userID.String(), tenantID.String()),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong auth scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authHeader: "Bearer " + signToken(t, userID.String(), tenantID.String(), func(c *TokenClaims) {
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed subject",
			authHeader: "Bearer " + signToken(t, "not-an-id", tenantID.String()),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed tenant claim",
			authHeader: "Bearer " + signToken(t, userID.String(), "not-an-id"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing tenant claim",
			authHeader: "Bearer " + signToken(t, userID.String(), ""),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser, gotTenant uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = GetUserID(r.Context())
				gotTenant, _ = GetTenantID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := Auth(AuthConfig{Secret: testSecret, Issuer: "test-idp"})(next)

			req := httptest.NewRequest(http.MethodGet, "/v1/contacts", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if gotUser != userID {
					t.Errorf("user in context = %s, want %s", gotUser, userID)
				}
				if gotTenant != tenantID {
					t.Errorf("tenant in context = %s, want %s", gotTenant, tenantID)
				}
			}
		})
	}
}

func TestAuth_RejectsWrongIssuer(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()
	token := signToken(t, userID.String(), tenantID.String(), func(c *TokenClaims) {
		c.Issuer = "someone-else"
	})

	handler := Auth(AuthConfig{Secret: testSecret, Issuer: "test-idp"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_RejectsWrongKey(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()
	claims := &TokenClaims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "test-idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("different-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	handler := Auth(AuthConfig{Secret: testSecret})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/tendant/simple-crm-core/internal/http/middleware"
)

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.TenantIDKey, uuid.New())
	ctx = context.WithValue(ctx, middleware.UserIDKey, uuid.New())
	return req.WithContext(ctx)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "empty body",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "name and email are required",
		},
		{
			name:           "missing email",
			body:           `{"name": "Ada"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "name and email are required",
		},
		{
			name:           "invalid json",
			body:           `{invalid}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request body",
		},
	}

	handler := NewHandler(slog.Default(), nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(http.MethodPost, "/v1/contacts", tt.body)
			rec := httptest.NewRecorder()

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Validation should have failed before reaching the repository")
				}
			}()

			handler.Create(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.expectedStatus)
			}

			var response map[string]string
			json.NewDecoder(rec.Body).Decode(&response)
			if response["error"] != tt.expectedError {
				t.Errorf("Error = %q, want %q", response["error"], tt.expectedError)
			}
		})
	}
}

func TestCreate_RejectsMalformedCompanyID(t *testing.T) {
	handler := NewHandler(slog.Default(), nil)

	req := authedRequest(http.MethodPost, "/v1/contacts",
		`{"name": "Ada", "email": "ada@example.com", "company_id": "not-a-uuid"}`)
	rec := httptest.NewRecorder()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Identifier validation should have failed before reaching the repository")
		}
	}()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestOptionalString_EmptyClearsValue(t *testing.T) {
	phone := "+1-555-0100"
	empty := ""

	if got := optionalString(nil); got != nil {
		t.Errorf("optionalString(nil) = %q, want nil", *got)
	}
	if got := optionalString(&empty); got != nil {
		t.Errorf("optionalString(\"\") = %q, want nil", *got)
	}
	if got := optionalString(&phone); got == nil || *got != phone {
		t.Errorf("optionalString(%q) = %v, want %q", phone, got, phone)
	}
}

func TestCreate_RequiresTenant(t *testing.T) {
	handler := NewHandler(slog.Default(), nil)

	// No tenant in context: the request never got through auth.
	req := httptest.NewRequest(http.MethodPost, "/v1/contacts",
		bytes.NewBufferString(`{"name": "Ada", "email": "ada@example.com"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

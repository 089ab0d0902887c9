// Package httputil holds the small shared pieces of the HTTP surface:
// JSON responders and the mapping from core error types to status codes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tendant/simple-crm-core/pkg/domain"
	"github.com/tendant/simple-crm-core/pkg/ident"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Status is the pure lookup from the core error taxonomy to HTTP status
// codes. Identifier decode errors are client-correctable input problems;
// storage unavailability deliberately hides internal detail behind 503.
func Status(err error) int {
	switch {
	case errors.Is(err, ident.ErrMalformedLength),
		errors.Is(err, ident.ErrInvalidCharacter),
		errors.Is(err, ident.ErrInvalidFormat),
		errors.Is(err, ident.ErrWrongScheme),
		errors.Is(err, domain.ErrInvalidStageTransition),
		errors.Is(err, domain.ErrInvalidActivityKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DomainError writes the response for a core error. Client-caused
// failures carry their message; server-side failures get a generic one.
func DomainError(w http.ResponseWriter, err error) {
	status := Status(err)
	switch status {
	case http.StatusServiceUnavailable:
		Error(w, status, "storage temporarily unavailable")
	case http.StatusInternalServerError:
		Error(w, status, "internal error")
	default:
		Error(w, status, err.Error())
	}
}

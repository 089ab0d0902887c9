package contacts

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tendant/simple-crm-core/internal/http/middleware"
	"github.com/tendant/simple-crm-core/internal/httputil"
	"github.com/tendant/simple-crm-core/pkg/domain"
	"github.com/tendant/simple-crm-core/pkg/ident"
	"github.com/tendant/simple-crm-core/pkg/repository"
)

// Handler handles contact endpoints.
type Handler struct {
	logger   *slog.Logger
	contacts *repository.ContactsRepository
}

// NewHandler creates a new contacts handler.
func NewHandler(logger *slog.Logger, contacts *repository.ContactsRepository) *Handler {
	return &Handler{logger: logger, contacts: contacts}
}

// ContactResponse is the wire form of a contact. Identifiers always go
// out in canonical text, whatever the storage encoding.
type ContactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CompanyID *string   `json:"company_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is a contact creation request.
type CreateRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	CompanyID *string `json:"company_id,omitempty"`
}

// UpdateRequest is a contact update request. Optional fields follow the
// patch convention: absent leaves the value alone, explicit empty string
// clears it.
type UpdateRequest struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	CompanyID *string `json:"company_id,omitempty"`
}

func toResponse(c *domain.Contact) ContactResponse {
	resp := ContactResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.CompanyID != nil {
		s := c.CompanyID.String()
		resp.CompanyID = &s
	}
	return resp
}

// Create creates a contact in the caller's tenant.
// POST /v1/contacts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		httputil.Error(w, http.StatusBadRequest, "name and email are required")
		return
	}

	companyID, err := parseOptionalID(req.CompanyID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	contact := &domain.Contact{
		TenantID:  tenantID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CompanyID: companyID,
	}
	if err := h.contacts.Create(r.Context(), contact); err != nil {
		h.logger.Error("failed to create contact", "error", err, "tenant_id", tenantID)
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(contact))
}

// Get returns one contact.
// GET /v1/contacts/{contactID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "contactID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	contact, err := h.contacts.GetByID(r.Context(), id, tenantID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(contact))
}

// List returns all live contacts in the caller's tenant.
// GET /v1/contacts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contacts, err := h.contacts.ListByTenant(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list contacts", "error", err, "tenant_id", tenantID)
		httputil.DomainError(w, err)
		return
	}

	resp := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		resp = append(resp, toResponse(c))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Update patches a contact.
// PATCH /v1/contacts/{contactID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "contactID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact, err := h.contacts.GetByID(r.Context(), id, tenantID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = optionalString(req.Phone)
	}
	if req.CompanyID != nil {
		companyID, err := parseOptionalID(req.CompanyID)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		contact.CompanyID = companyID
	}

	if err := h.contacts.Update(r.Context(), contact); err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(contact))
}

// Delete tombstones a contact. Idempotent, so it always answers 204.
// DELETE /v1/contacts/{contactID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "contactID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	if err := h.contacts.SoftDelete(r.Context(), id, tenantID); err != nil {
		httputil.DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// optionalString normalizes an optional patch field; empty string means
// "clear the value".
func optionalString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// parseOptionalID parses an optional canonical identifier; empty string
// means "clear the link".
func parseOptionalID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := ident.ParseCanonical(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

package companies

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-crm-core/internal/http/middleware"
	"github.com/tendant/simple-crm-core/internal/httputil"
	"github.com/tendant/simple-crm-core/pkg/domain"
	"github.com/tendant/simple-crm-core/pkg/ident"
	"github.com/tendant/simple-crm-core/pkg/repository"
)

// Handler handles company endpoints.
type Handler struct {
	logger    *slog.Logger
	companies *repository.CompaniesRepository
}

// NewHandler creates a new companies handler.
func NewHandler(logger *slog.Logger, companies *repository.CompaniesRepository) *Handler {
	return &Handler{logger: logger, companies: companies}
}

// CompanyResponse is the wire form of a company.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    *string   `json:"domain,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is a company creation request.
type CreateRequest struct {
	Name   string  `json:"name"`
	Domain *string `json:"domain,omitempty"`
}

// UpdateRequest is a company update request. Optional fields follow the
// patch convention: absent leaves the value alone, explicit empty string
// clears it.
type UpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Domain *string `json:"domain,omitempty"`
}

func toResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Domain:    c.Domain,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Create creates a company in the caller's tenant.
// POST /v1/companies
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
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	company := &domain.Company{
		TenantID: tenantID,
		Name:     req.Name,
		Domain:   req.Domain,
	}
	if err := h.companies.Create(r.Context(), company); err != nil {
		h.logger.Error("failed to create company", "error", err, "tenant_id", tenantID)
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(company))
}

// Get returns one company.
// GET /v1/companies/{companyID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	company, err := h.companies.GetByID(r.Context(), id, tenantID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(company))
}

// List returns all live companies in the caller's tenant.
// GET /v1/companies
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	companies, err := h.companies.ListByTenant(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list companies", "error", err, "tenant_id", tenantID)
		httputil.DomainError(w, err)
		return
	}

	resp := make([]CompanyResponse, 0, len(companies))
	for _, c := range companies {
		resp = append(resp, toResponse(c))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Update patches a company.
// PATCH /v1/companies/{companyID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	company, err := h.companies.GetByID(r.Context(), id, tenantID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Domain != nil {
		company.Domain = optionalString(req.Domain)
	}

	if err := h.companies.Update(r.Context(), company); err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(company))
}

// Delete tombstones a company. Idempotent, so it always answers 204.
// DELETE /v1/companies/{companyID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	if err := h.companies.SoftDelete(r.Context(), id, tenantID); err != nil {
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

package deals

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

// Handler handles deal endpoints.
type Handler struct {
	logger *slog.Logger
	deals  *repository.DealsRepository
}

// NewHandler creates a new deals handler.
func NewHandler(logger *slog.Logger, deals *repository.DealsRepository) *Handler {
	return &Handler{logger: logger, deals: deals}
}

// DealResponse is the wire form of a deal.
type DealResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amount_cents"`
	Stage       string    `json:"stage"`
	ContactID   *string   `json:"contact_id,omitempty"`
	CompanyID   *string   `json:"company_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest is a deal creation request.
type CreateRequest struct {
	Title       string  `json:"title"`
	AmountCents int64   `json:"amount_cents"`
	ContactID   *string `json:"contact_id,omitempty"`
	CompanyID   *string `json:"company_id,omitempty"`
}

// UpdateRequest is a deal update request.
type UpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	AmountCents *int64  `json:"amount_cents,omitempty"`
	ContactID   *string `json:"contact_id,omitempty"`
	CompanyID   *string `json:"company_id,omitempty"`
}

// StageRequest moves a deal through the pipeline.
type StageRequest struct {
	Stage string `json:"stage"`
}

func toResponse(d *domain.Deal) DealResponse {
	resp := DealResponse{
		ID:          d.ID.String(),
		Title:       d.Title,
		AmountCents: d.AmountCents,
		Stage:       string(d.Stage),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.ContactID != nil {
		s := d.ContactID.String()
		resp.ContactID = &s
	}
	if d.CompanyID != nil {
		s := d.CompanyID.String()
		resp.CompanyID = &s
	}
	return resp
}

// Create creates a deal in the caller's tenant, starting as a lead.
// POST /v1/deals
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
	if req.Title == "" {
		httputil.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.AmountCents < 0 {
		httputil.Error(w, http.StatusBadRequest, "amount_cents must not be negative")
		return
	}

	contactID, err := parseOptionalID(req.ContactID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	companyID, err := parseOptionalID(req.CompanyID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	deal := &domain.Deal{
		TenantID:    tenantID,
		Title:       req.Title,
		AmountCents: req.AmountCents,
		ContactID:   contactID,
		CompanyID:   companyID,
	}
	if err := h.deals.Create(r.Context(), deal); err != nil {
		h.logger.Error("failed to create deal", "error", err, "tenant_id", tenantID)
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(deal))
}

// Get returns one deal.
// GET /v1/deals/{dealID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "dealID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	deal, err := h.deals.GetByID(r.Context(), id, tenantID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(deal))
}

// List returns all live deals in the caller's tenant.
// GET /v1/deals
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	deals, err := h.deals.ListByTenant(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list deals", "error", err, "tenant_id", tenantID)
		httputil.DomainError(w, err)
		return
	}

	resp := make([]DealResponse, 0, len(deals))
	for _, d := range deals {
		resp = append(resp, toResponse(d))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Update patches a deal's fields. Stage changes go through Stage.
// PATCH /v1/deals/{dealID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "dealID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deal, err := h.deals.GetByID(r.Context(), id, tenantID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	if req.Title != nil {
		deal.Title = *req.Title
	}
	if req.AmountCents != nil {
		if *req.AmountCents < 0 {
			httputil.Error(w, http.StatusBadRequest, "amount_cents must not be negative")
			return
		}
		deal.AmountCents = *req.AmountCents
	}
	if req.ContactID != nil {
		contactID, err := parseOptionalID(req.ContactID)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		deal.ContactID = contactID
	}
	if req.CompanyID != nil {
		companyID, err := parseOptionalID(req.CompanyID)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		deal.CompanyID = companyID
	}

	if err := h.deals.Update(r.Context(), deal); err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(deal))
}

// Stage moves a deal to the next pipeline stage.
// POST /v1/deals/{dealID}/stage
func (h *Handler) Stage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "dealID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	var req StageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Stage == "" {
		httputil.Error(w, http.StatusBadRequest, "stage is required")
		return
	}
	stage := domain.DealStage(req.Stage)
	if !stage.Valid() {
		httputil.Error(w, http.StatusBadRequest, "unknown stage")
		return
	}

	deal, err := h.deals.AdvanceStage(r.Context(), id, tenantID, stage)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(deal))
}

// Delete tombstones a deal. Idempotent, so it always answers 204.
// DELETE /v1/deals/{dealID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ident.ParseCanonical(chi.URLParam(r, "dealID"))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	if err := h.deals.SoftDelete(r.Context(), id, tenantID); err != nil {
		httputil.DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

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

package activities

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-crm-core/internal/http/middleware"
	"github.com/tendant/simple-crm-core/internal/httputil"
	"github.com/tendant/simple-crm-core/pkg/domain"
	"github.com/tendant/simple-crm-core/pkg/ident"
	"github.com/tendant/simple-crm-core/pkg/repository"
)

// maxPageSize caps how much timeline a single request can pull.
const maxPageSize = 200

// Handler handles timeline endpoints.
type Handler struct {
	logger     *slog.Logger
	activities *repository.ActivitiesRepository
}

// NewHandler creates a new activities handler.
func NewHandler(logger *slog.Logger, activities *repository.ActivitiesRepository) *Handler {
	return &Handler{logger: logger, activities: activities}
}

// ActivityResponse is the wire form of a timeline entry. OccurredAt is
// read back out of the time-ordered identifier.
type ActivityResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Body       string    `json:"body"`
	ContactID  *string   `json:"contact_id,omitempty"`
	DealID     *string   `json:"deal_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateRequest is a timeline entry creation request.
type CreateRequest struct {
	Kind      string  `json:"kind"`
	Body      string  `json:"body"`
	ContactID *string `json:"contact_id,omitempty"`
	DealID    *string `json:"deal_id,omitempty"`
}

// ListResponse is one page of the timeline. NextCursor is the canonical
// identifier of the last entry, to be passed back as ?after=.
type ListResponse struct {
	Activities []ActivityResponse `json:"activities"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

func toResponse(a *domain.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:        a.ID.String(),
		Kind:      string(a.Kind),
		Body:      a.Body,
		CreatedAt: a.CreatedAt,
	}
	if ts, err := ident.Timestamp(a.ID); err == nil {
		resp.OccurredAt = ts
	}
	if a.ContactID != nil {
		s := a.ContactID.String()
		resp.ContactID = &s
	}
	if a.DealID != nil {
		s := a.DealID.String()
		resp.DealID = &s
	}
	return resp
}

// Create appends an entry to the caller's timeline.
// POST /v1/activities
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
	if req.Body == "" {
		httputil.Error(w, http.StatusBadRequest, "body is required")
		return
	}

	contactID, err := parseOptionalID(req.ContactID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	dealID, err := parseOptionalID(req.DealID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	activity := &domain.Activity{
		TenantID:  tenantID,
		Kind:      domain.ActivityKind(req.Kind),
		Body:      req.Body,
		ContactID: contactID,
		DealID:    dealID,
	}
	if err := h.activities.Create(r.Context(), activity); err != nil {
		h.logger.Error("failed to create activity", "error", err, "tenant_id", tenantID)
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(activity))
}

// List returns one page of the tenant's timeline in insertion order.
// GET /v1/activities?after=<id>&limit=<n>
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var after *uuid.UUID
	if s := r.URL.Query().Get("after"); s != "" {
		id, err := ident.ParseCanonical(s)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		after = &id
	}

	limit := repository.DefaultActivityPageSize
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			httputil.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		limit = n
	}

	activities, err := h.activities.ListByTenant(r.Context(), tenantID, after, limit)
	if err != nil {
		h.logger.Error("failed to list activities", "error", err, "tenant_id", tenantID)
		httputil.DomainError(w, err)
		return
	}

	resp := ListResponse{Activities: make([]ActivityResponse, 0, len(activities))}
	for _, a := range activities {
		resp.Activities = append(resp.Activities, toResponse(a))
	}
	if len(activities) == limit {
		resp.NextCursor = activities[len(activities)-1].ID.String()
	}
	httputil.JSON(w, http.StatusOK, resp)
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

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-crm-core/pkg/domain"
	"github.com/tendant/simple-crm-core/pkg/ident"
)

// DealsRepository handles deal persistence.
type DealsRepository struct {
	store
}

// NewDealsRepository creates a new deals repository.
func NewDealsRepository(db *sql.DB, ids ident.Codec, gen *ident.Generator) *DealsRepository {
	return &DealsRepository{store{db: db, ids: ids, gen: gen}}
}

// Create assigns a fresh identifier and timestamps, then persists the
// deal. New deals without a stage start as leads.
func (r *DealsRepository) Create(ctx context.Context, deal *domain.Deal) error {
	deal.ID = r.gen.NewRandom()
	if deal.Stage == "" {
		deal.Stage = domain.StageLead
	}
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	query := `
		INSERT INTO deals (id, tenant_id, title, amount_cents, stage, contact_id, company_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(deal.ID), r.ids.Bind(deal.TenantID),
		deal.Title, deal.AmountCents, deal.Stage,
		r.ids.BindPtr(deal.ContactID), r.ids.BindPtr(deal.CompanyID),
		deal.CreatedAt, deal.UpdatedAt,
	)
	return translateErr(err)
}

// GetByID retrieves a live deal within the tenant.
func (r *DealsRepository) GetByID(ctx context.Context, id, tenantID uuid.UUID) (*domain.Deal, error) {
	query := `
		SELECT id, tenant_id, title, amount_cents, stage, contact_id, company_id, created_at, updated_at, deleted_at
		FROM deals
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	deal := &domain.Deal{}
	err := r.db.QueryRowContext(ctx, query, r.ids.Bind(id), r.ids.Bind(tenantID)).Scan(
		r.ids.ScanTarget(&deal.ID), r.ids.ScanTarget(&deal.TenantID),
		&deal.Title, &deal.AmountCents, &deal.Stage,
		r.ids.ScanNullTarget(&deal.ContactID), r.ids.ScanNullTarget(&deal.CompanyID),
		&deal.CreatedAt, &deal.UpdatedAt, &deal.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return deal, nil
}

// ListByTenant retrieves all live deals in the tenant, newest first.
func (r *DealsRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Deal, error) {
	query := `
		SELECT id, tenant_id, title, amount_cents, stage, contact_id, company_id, created_at, updated_at, deleted_at
		FROM deals
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, r.ids.Bind(tenantID))
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var deals []*domain.Deal
	for rows.Next() {
		deal := &domain.Deal{}
		err := rows.Scan(
			r.ids.ScanTarget(&deal.ID), r.ids.ScanTarget(&deal.TenantID),
			&deal.Title, &deal.AmountCents, &deal.Stage,
			r.ids.ScanNullTarget(&deal.ContactID), r.ids.ScanNullTarget(&deal.CompanyID),
			&deal.CreatedAt, &deal.UpdatedAt, &deal.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

// Update rewrites the mutable fields of a deal under the tenant
// predicate. Stage moves go through AdvanceStage, not here.
func (r *DealsRepository) Update(ctx context.Context, deal *domain.Deal) error {
	query := `
		UPDATE deals
		SET title = $3, amount_cents = $4, contact_id = $5, company_id = $6, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(deal.ID), r.ids.Bind(deal.TenantID),
		deal.Title, deal.AmountCents,
		r.ids.BindPtr(deal.ContactID), r.ids.BindPtr(deal.CompanyID),
	)
	if err != nil {
		return translateErr(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdvanceStage moves a deal through the pipeline. The write predicates
// on the previous stage, so a concurrent move loses cleanly with
// ErrNotFound instead of silently overwriting.
func (r *DealsRepository) AdvanceStage(ctx context.Context, id, tenantID uuid.UUID, next domain.DealStage) (*domain.Deal, error) {
	deal, err := r.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	prev := deal.Stage
	if err := deal.AdvanceTo(next); err != nil {
		return nil, err
	}

	query := `
		UPDATE deals
		SET stage = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND stage = $4 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(id), r.ids.Bind(tenantID), deal.Stage, prev,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	return deal, nil
}

// SoftDelete tombstones a deal. Idempotent.
func (r *DealsRepository) SoftDelete(ctx context.Context, id, tenantID uuid.UUID) error {
	query := `
		UPDATE deals
		SET deleted_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, r.ids.Bind(id), r.ids.Bind(tenantID))
	return translateErr(err)
}

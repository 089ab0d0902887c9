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

// CompaniesRepository handles company persistence.
type CompaniesRepository struct {
	store
}

// NewCompaniesRepository creates a new companies repository.
func NewCompaniesRepository(db *sql.DB, ids ident.Codec, gen *ident.Generator) *CompaniesRepository {
	return &CompaniesRepository{store{db: db, ids: ids, gen: gen}}
}

// Create assigns a fresh identifier and timestamps, then persists the company.
func (r *CompaniesRepository) Create(ctx context.Context, company *domain.Company) error {
	company.ID = r.gen.NewRandom()
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	query := `
		INSERT INTO companies (id, tenant_id, name, domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(company.ID), r.ids.Bind(company.TenantID),
		company.Name, company.Domain,
		company.CreatedAt, company.UpdatedAt,
	)
	return translateErr(err)
}

// GetByID retrieves a live company within the tenant.
func (r *CompaniesRepository) GetByID(ctx context.Context, id, tenantID uuid.UUID) (*domain.Company, error) {
	query := `
		SELECT id, tenant_id, name, domain, created_at, updated_at, deleted_at
		FROM companies
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	company := &domain.Company{}
	err := r.db.QueryRowContext(ctx, query, r.ids.Bind(id), r.ids.Bind(tenantID)).Scan(
		r.ids.ScanTarget(&company.ID), r.ids.ScanTarget(&company.TenantID),
		&company.Name, &company.Domain,
		&company.CreatedAt, &company.UpdatedAt, &company.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return company, nil
}

// ListByTenant retrieves all live companies in the tenant.
func (r *CompaniesRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Company, error) {
	query := `
		SELECT id, tenant_id, name, domain, created_at, updated_at, deleted_at
		FROM companies
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, r.ids.Bind(tenantID))
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		company := &domain.Company{}
		err := rows.Scan(
			r.ids.ScanTarget(&company.ID), r.ids.ScanTarget(&company.TenantID),
			&company.Name, &company.Domain,
			&company.CreatedAt, &company.UpdatedAt, &company.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// Update rewrites the mutable fields of a company under the tenant predicate.
func (r *CompaniesRepository) Update(ctx context.Context, company *domain.Company) error {
	query := `
		UPDATE companies
		SET name = $3, domain = $4, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(company.ID), r.ids.Bind(company.TenantID),
		company.Name, company.Domain,
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

// SoftDelete tombstones a company. Idempotent.
func (r *CompaniesRepository) SoftDelete(ctx context.Context, id, tenantID uuid.UUID) error {
	query := `
		UPDATE companies
		SET deleted_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, r.ids.Bind(id), r.ids.Bind(tenantID))
	return translateErr(err)
}

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

// TenantsRepository handles tenant persistence. Tenants are the one
// top-level table: they scope everything else and are not themselves
// scoped by a tenant predicate.
type TenantsRepository struct {
	store
}

// NewTenantsRepository creates a new tenants repository.
func NewTenantsRepository(db *sql.DB, ids ident.Codec, gen *ident.Generator) *TenantsRepository {
	return &TenantsRepository{store{db: db, ids: ids, gen: gen}}
}

// Create assigns a fresh identifier and timestamps, then persists the
// tenant. Slugs are globally unique among live tenants.
func (r *TenantsRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	tenant.ID = r.gen.NewRandom()
	now := time.Now().UTC()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	query := `
		INSERT INTO tenants (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(tenant.ID),
		tenant.Name, tenant.Slug,
		tenant.CreatedAt, tenant.UpdatedAt,
	)
	return translateErr(err)
}

// GetByID retrieves a live tenant.
func (r *TenantsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at, deleted_at
		FROM tenants
		WHERE id = $1 AND deleted_at IS NULL
	`
	tenant := &domain.Tenant{}
	err := r.db.QueryRowContext(ctx, query, r.ids.Bind(id)).Scan(
		r.ids.ScanTarget(&tenant.ID),
		&tenant.Name, &tenant.Slug,
		&tenant.CreatedAt, &tenant.UpdatedAt, &tenant.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return tenant, nil
}

// GetBySlug retrieves a live tenant by slug.
func (r *TenantsRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at, deleted_at
		FROM tenants
		WHERE slug = $1 AND deleted_at IS NULL
	`
	tenant := &domain.Tenant{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		r.ids.ScanTarget(&tenant.ID),
		&tenant.Name, &tenant.Slug,
		&tenant.CreatedAt, &tenant.UpdatedAt, &tenant.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return tenant, nil
}

// Update rewrites the mutable fields of a tenant.
func (r *TenantsRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, slug = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(tenant.ID), tenant.Name, tenant.Slug,
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

// SoftDelete tombstones a tenant. Idempotent.
func (r *TenantsRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE tenants
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, r.ids.Bind(id))
	return translateErr(err)
}

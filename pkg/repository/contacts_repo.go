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

// ContactsRepository handles contact persistence. Contacts carry
// random-scheme identifiers so they cannot be enumerated across tenants.
type ContactsRepository struct {
	store
}

// NewContactsRepository creates a new contacts repository.
func NewContactsRepository(db *sql.DB, ids ident.Codec, gen *ident.Generator) *ContactsRepository {
	return &ContactsRepository{store{db: db, ids: ids, gen: gen}}
}

// Create assigns a fresh identifier and timestamps, then persists the
// contact. The tenant ID must already be set and never changes after.
func (r *ContactsRepository) Create(ctx context.Context, contact *domain.Contact) error {
	contact.ID = r.gen.NewRandom()
	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	query := `
		INSERT INTO contacts (id, tenant_id, name, email, phone, company_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(contact.ID), r.ids.Bind(contact.TenantID),
		contact.Name, contact.Email, contact.Phone,
		r.ids.BindPtr(contact.CompanyID),
		contact.CreatedAt, contact.UpdatedAt,
	)
	return translateErr(err)
}

// GetByID retrieves a live contact within the tenant.
func (r *ContactsRepository) GetByID(ctx context.Context, id, tenantID uuid.UUID) (*domain.Contact, error) {
	query := `
		SELECT id, tenant_id, name, email, phone, company_id, created_at, updated_at, deleted_at
		FROM contacts
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	contact := &domain.Contact{}
	err := r.db.QueryRowContext(ctx, query, r.ids.Bind(id), r.ids.Bind(tenantID)).Scan(
		r.ids.ScanTarget(&contact.ID), r.ids.ScanTarget(&contact.TenantID),
		&contact.Name, &contact.Email, &contact.Phone,
		r.ids.ScanNullTarget(&contact.CompanyID),
		&contact.CreatedAt, &contact.UpdatedAt, &contact.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return contact, nil
}

// ListByTenant retrieves all live contacts in the tenant.
func (r *ContactsRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Contact, error) {
	query := `
		SELECT id, tenant_id, name, email, phone, company_id, created_at, updated_at, deleted_at
		FROM contacts
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, r.ids.Bind(tenantID))
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		contact := &domain.Contact{}
		err := rows.Scan(
			r.ids.ScanTarget(&contact.ID), r.ids.ScanTarget(&contact.TenantID),
			&contact.Name, &contact.Email, &contact.Phone,
			r.ids.ScanNullTarget(&contact.CompanyID),
			&contact.CreatedAt, &contact.UpdatedAt, &contact.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// Update rewrites the mutable fields of a contact under the tenant
// predicate. A soft-deleted or cross-tenant target reports ErrNotFound.
func (r *ContactsRepository) Update(ctx context.Context, contact *domain.Contact) error {
	query := `
		UPDATE contacts
		SET name = $3, email = $4, phone = $5, company_id = $6, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(contact.ID), r.ids.Bind(contact.TenantID),
		contact.Name, contact.Email, contact.Phone,
		r.ids.BindPtr(contact.CompanyID),
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

// SoftDelete tombstones a contact. Idempotent: deleting an absent or
// already-deleted contact succeeds without touching anything.
func (r *ContactsRepository) SoftDelete(ctx context.Context, id, tenantID uuid.UUID) error {
	query := `
		UPDATE contacts
		SET deleted_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, r.ids.Bind(id), r.ids.Bind(tenantID))
	return translateErr(err)
}

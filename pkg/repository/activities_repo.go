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

// DefaultActivityPageSize bounds timeline pages when the caller does not
// ask for a size.
const DefaultActivityPageSize = 50

// ActivitiesRepository handles timeline persistence. Activities are the
// one entity with time-ordered identifiers: the feed sorts on the id
// column, and pagination is keyset on the last-seen identifier rather
// than OFFSET. All three storage encodings preserve that ordering.
type ActivitiesRepository struct {
	store
}

// NewActivitiesRepository creates a new activities repository.
func NewActivitiesRepository(db *sql.DB, ids ident.Codec, gen *ident.Generator) *ActivitiesRepository {
	return &ActivitiesRepository{store{db: db, ids: ids, gen: gen}}
}

// Create assigns a fresh time-ordered identifier and timestamps, then
// persists the activity.
func (r *ActivitiesRepository) Create(ctx context.Context, activity *domain.Activity) error {
	if err := activity.Validate(); err != nil {
		return err
	}

	activity.ID = r.gen.NewTimeOrderedNow()
	now := time.Now().UTC()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	query := `
		INSERT INTO activities (id, tenant_id, kind, body, contact_id, deal_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		r.ids.Bind(activity.ID), r.ids.Bind(activity.TenantID),
		activity.Kind, activity.Body,
		r.ids.BindPtr(activity.ContactID), r.ids.BindPtr(activity.DealID),
		activity.CreatedAt, activity.UpdatedAt,
	)
	return translateErr(err)
}

// GetByID retrieves a live activity within the tenant.
func (r *ActivitiesRepository) GetByID(ctx context.Context, id, tenantID uuid.UUID) (*domain.Activity, error) {
	query := `
		SELECT id, tenant_id, kind, body, contact_id, deal_id, created_at, updated_at, deleted_at
		FROM activities
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	activity := &domain.Activity{}
	err := r.db.QueryRowContext(ctx, query, r.ids.Bind(id), r.ids.Bind(tenantID)).Scan(
		r.ids.ScanTarget(&activity.ID), r.ids.ScanTarget(&activity.TenantID),
		&activity.Kind, &activity.Body,
		r.ids.ScanNullTarget(&activity.ContactID), r.ids.ScanNullTarget(&activity.DealID),
		&activity.CreatedAt, &activity.UpdatedAt, &activity.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return activity, nil
}

// ListByTenant returns one page of the tenant's timeline in insertion
// order. after is the last identifier of the previous page; nil starts
// from the beginning. The comparison runs on the storage-encoded column,
// which orders identically to the raw identifier for every encoding.
func (r *ActivitiesRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, after *uuid.UUID, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityPageSize
	}

	query := `
		SELECT id, tenant_id, kind, body, contact_id, deal_id, created_at, updated_at, deleted_at
		FROM activities
		WHERE tenant_id = $1 AND deleted_at IS NULL
	`
	args := []any{r.ids.Bind(tenantID)}
	if after != nil {
		query += ` AND id > $2 ORDER BY id ASC LIMIT $3`
		args = append(args, r.ids.Bind(*after), limit)
	} else {
		query += ` ORDER BY id ASC LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		activity := &domain.Activity{}
		err := rows.Scan(
			r.ids.ScanTarget(&activity.ID), r.ids.ScanTarget(&activity.TenantID),
			&activity.Kind, &activity.Body,
			r.ids.ScanNullTarget(&activity.ContactID), r.ids.ScanNullTarget(&activity.DealID),
			&activity.CreatedAt, &activity.UpdatedAt, &activity.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// SoftDelete tombstones an activity. Idempotent.
func (r *ActivitiesRepository) SoftDelete(ctx context.Context, id, tenantID uuid.UUID) error {
	query := `
		UPDATE activities
		SET deleted_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, r.ids.Bind(id), r.ids.Bind(tenantID))
	return translateErr(err)
}

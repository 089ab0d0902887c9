package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the isolation boundary. Every other record belongs to
// exactly one tenant, and its TenantID never changes after creation.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Company represents an organization a tenant does business with.
// Domain is unique per tenant among live records.
type Company struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Domain    *string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

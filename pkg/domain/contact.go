package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact represents a person in a tenant's address book.
// Email is unique per tenant among live records.
type Contact struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Email     string
	Phone     *string
	CompanyID *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

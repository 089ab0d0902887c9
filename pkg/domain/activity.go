package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityKind classifies a timeline entry.
type ActivityKind string

const (
	ActivityNote    ActivityKind = "note"
	ActivityCall    ActivityKind = "call"
	ActivityEmail   ActivityKind = "email"
	ActivityMeeting ActivityKind = "meeting"
)

// Valid reports whether k is a known activity kind.
func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityNote, ActivityCall, ActivityEmail, ActivityMeeting:
		return true
	}
	return false
}

// Activity is an entry in a tenant's timeline. Activities carry
// time-ordered identifiers, so the feed sorts and paginates on the ID
// itself and OccurredAt can be read back out of it.
type Activity struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Kind      ActivityKind
	Body      string
	ContactID *uuid.UUID
	DealID    *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Validate checks the fields callers control.
func (a *Activity) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidActivityKind, a.Kind)
	}
	return nil
}

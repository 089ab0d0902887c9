package domain

import "errors"

// Repository errors
var (
	// ErrNotFound covers lookups that miss, including targets outside the
	// caller's tenant and soft-deleted rows. Callers cannot tell those
	// cases apart, by construction.
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a uniqueness violation within a tenant.
	ErrConflict = errors.New("record conflicts with an existing record")
	// ErrStorageUnavailable reports a transient persistence failure.
	// It is the only repository error worth retrying.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Validation errors
var (
	ErrInvalidStageTransition = errors.New("invalid deal stage transition")
	ErrInvalidActivityKind    = errors.New("invalid activity kind")
)

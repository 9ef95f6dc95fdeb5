package common

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPendingExists    = errors.New("a pending amendment already exists for this record")
	ErrAlreadyProcessed = errors.New("amendment has already been processed")
	ErrNoChanges        = errors.New("no changes detected")
	ErrNotPublished     = errors.New("record is not published")
)

// ValidationError describes a rejected input field
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError identifies a missing resource by type and id
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError describes a state conflict, optionally naming the
// resource that caused it (e.g. the existing pending amendment)
type ConflictError struct {
	Reason        string `json:"reason"`
	ConflictingID string `json:"conflicting_id,omitempty"`
}

func (e *ConflictError) Error() string {
	if e.ConflictingID != "" {
		return fmt.Sprintf("conflict: %s (existing: %s)", e.Reason, e.ConflictingID)
	}
	return "conflict: " + e.Reason
}

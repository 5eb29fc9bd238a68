package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by repositories when no document matches.
var ErrNotFound = errors.New("not found")

// ErrSlugExhausted is returned when no free slug suffix was found within the attempt limit.
var ErrSlugExhausted = errors.New("could not generate a unique slug")

// ValidationError reports one or more fields that failed required, enum, pattern or
// length checks. Fields maps a document field name to its message.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ReferenceError reports a booking that points at an event that does not exist.
type ReferenceError struct {
	EventID string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("event not found: %s", e.EventID)
}

// ConflictError reports a write rejected by a unique index in the storage engine.
type ConflictError struct {
	Index string
	Err   error
}

func (e *ConflictError) Error() string {
	if e.Index == "" {
		return fmt.Sprintf("duplicate key: %v", e.Err)
	}
	return fmt.Sprintf("duplicate key on %s: %v", e.Index, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// ConnectionError reports that the storage connection could not be established.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsReference reports whether err is or wraps a *ReferenceError.
func IsReference(err error) bool {
	var re *ReferenceError
	return errors.As(err, &re)
}

// IsConflict reports whether err is or wraps a *ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

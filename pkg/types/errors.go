package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Store operation errors.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidID       = errors.New("invalid entity ID")
	ErrInvalidData     = errors.New("invalid entity data")
	ErrInvalidFilter   = errors.New("invalid filter key")
	ErrInvalidField    = errors.New("field cannot be updated")
	ErrInvalidRelation = errors.New("invalid relation")
	ErrReadOnlyTable   = errors.New("table is read-only")
	ErrInUse           = errors.New("entity is still referenced")
)

// Catalog lifecycle errors.
var (
	ErrCatalogDetached = errors.New("catalog is detached")
	ErrAlreadyAttached = errors.New("catalog is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports client input that is malformed or references a
// foreign entity that does not exist. Nothing was written.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a violation for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Has reports whether field has at least one violation.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Empty reports whether no violation was recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an operation that targets a missing row.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IntegrityError reports an association write that failed after the package
// row was committed. The package exists but its links are incomplete; the
// write is not rolled back.
type IntegrityError struct {
	PackageID int64
	Relation  Relation
	Err       error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("package %d saved but %s links were not written: %v", e.PackageID, e.Relation, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// IsRetrySafe reports whether err guarantees that nothing was written, so the
// caller may retry after fixing its input. Integrity and storage errors are
// not retry safe.
func IsRetrySafe(err error) bool {
	if err == nil {
		return false
	}
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return false
	}
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound)
}

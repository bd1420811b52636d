// Package errors provides custom error types for product-related operations.
package errors

import (
	"fmt"
	"strings"
)

// ValidationError reports every field rule broken by a create or update payload.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NotFoundError indicates that no live record exists for the given id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product with id %d not found", e.ID)
}

// NameConflictError indicates a case-insensitive name collision with another record.
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("product with name %q already exists", e.Name)
}

// InsufficientStockError indicates a subtract that would take stock below zero.
type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
}

// InvalidOperationError indicates a malformed stock adjustment request.
type InvalidOperationError struct {
	Value string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid stock adjustment: %s", e.Value)
}

// InvalidIdentifierError indicates a path or query id that does not parse as an integer.
type InvalidIdentifierError struct {
	Raw string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid product id: %q", e.Raw)
}

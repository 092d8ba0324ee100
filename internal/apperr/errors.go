// Package apperr defines the closed error taxonomy shared by the lineage codec,
// the costing engine and the production services. Every error aborts the
// enclosing unit of work; callers match them with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError is a local field problem in a submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Validation builds a *ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidQuantityError is a ValidationError raised for non-positive quantities.
type InvalidQuantityError struct {
	Field string
	Value float64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity for %s: %.4f must be greater than zero", e.Field, e.Value)
}

func (e *InvalidQuantityError) Unwrap() error {
	return &ValidationError{Field: e.Field, Message: "must be greater than zero"}
}

// ReferenceDataError reports missing or incomplete master data, such as an
// unset short code.
type ReferenceDataError struct {
	Entity  string
	ID      string
	Field   string
	Message string
}

func (e *ReferenceDataError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("reference data %s.%s: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("reference data %s %s: %s %s", e.Entity, e.ID, e.Field, e.Message)
}

// InvalidConfigurationError is a ReferenceDataError for master data that exists
// but is not configured for the requested operation (e.g. no target oil type).
type InvalidConfigurationError struct {
	ReferenceDataError
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid configuration: " + e.ReferenceDataError.Error()
}

func (e *InvalidConfigurationError) Unwrap() error {
	return &e.ReferenceDataError
}

// InsufficientStockError is returned when a movement would drive an inventory
// position negative.
type InsufficientStockError struct {
	ItemType  string
	ItemKey   string
	Available float64
	Requested float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s %s: requested %.4f, available %.4f",
		e.ItemType, e.ItemKey, e.Requested, e.Available)
}

// ParseError reports a malformed lineage code.
type ParseError struct {
	Code   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed lineage code %q: %s", e.Code, e.Reason)
}

// CollisionError means a freshly generated lineage code already exists. It
// signals a serial-tracking integrity fault and is not retryable.
type CollisionError struct {
	Code   string
	Entity string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("lineage code %s already exists on %s", e.Code, e.Entity)
}

// DuplicateError means a submission would recreate a record that already
// exists, such as a second blend of the same components on the same day.
// Unlike CollisionError it is a user conflict, not an integrity fault.
type DuplicateError struct {
	Code   string
	Entity string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.Code)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsReferenceData reports whether err is, or wraps, a ReferenceDataError.
func IsReferenceData(err error) bool {
	var target *ReferenceDataError
	return errors.As(err, &target)
}

// IsInsufficientStock reports whether err is, or wraps, an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// IsParse reports whether err is, or wraps, a ParseError.
func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsCollision reports whether err is, or wraps, a CollisionError.
func IsCollision(err error) bool {
	var target *CollisionError
	return errors.As(err, &target)
}

// IsDuplicate reports whether err is, or wraps, a DuplicateError.
func IsDuplicate(err error) bool {
	var target *DuplicateError
	return errors.As(err, &target)
}

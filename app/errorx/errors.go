// Package errorx is the domain error taxonomy. Services return these types;
// controllers map them to HTTP with errors.As.
package errorx

import (
	"errors"
	"fmt"
	"strconv"
)

// ValidationError is malformed or out-of-range input. Fields, when set, is
// keyed by the request's JSON field names.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Field builds a ValidationError for a single field.
func Field(field, msg string) *ValidationError {
	return &ValidationError{
		Message: field + " " + msg,
		Fields:  map[string]string{field: msg},
	}
}

// InsufficientInventoryError names the crop whose live stock cannot cover
// the requested quantity.
type InsufficientInventoryError struct {
	CropID    uint
	CropName  string
	Requested float64
	Available float64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: requested %s, available %s",
		e.CropName, formatQty(e.Requested), formatQty(e.Available))
}

// ConflictError is a lost race with another request on the same row.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError is an operation against an entity whose current state
// does not allow it.
type InvalidStateError struct {
	Entity  string
	State   string
	Message string
}

func (e *InvalidStateError) Error() string {
	if e.State == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s is %s)", e.Message, e.Entity, e.State)
}

func InvalidState(entity, state, msg string) *InvalidStateError {
	return &InvalidStateError{Entity: entity, State: state, Message: msg}
}

// NotFoundError covers both absent rows and rows the caller may not see.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func NotFound(entity string, id uint) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// Package errors provides error code definitions shared by the planner
// repositories and their callers.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a unique error code surfaced to the presentation layer.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrDomainRule ErrorCode = "DOMAIN_RULE"

	// Database errors
	ErrDatabase   ErrorCode = "DATABASE_ERROR"
	ErrMigration  ErrorCode = "MIGRATION_FAILED"
	ErrConstraint ErrorCode = "CONSTRAINT_VIOLATION"

	// Settings errors
	ErrCategoryMissing  ErrorCode = "CATEGORY_MISSING"
	ErrProtectedSetting ErrorCode = "PROTECTED_SETTING"
)

// AppError represents an application error with code and message.
// Fields carries field-level detail for validation errors.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	Fields  map[string]string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, formatFields(e.Fields))
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound reports an unknown id for the given entity.
func NotFound(entity, id string) *AppError {
	return New(ErrNotFound, fmt.Sprintf("%s not found: %s", entity, id))
}

// Database wraps a raw store failure. The driver message is kept verbatim;
// constraint failures are coded ErrConstraint. A nil err yields nil.
func Database(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return Wrap(ErrConstraint, op, err)
	}
	return Wrap(ErrDatabase, op, err)
}

// Is checks if an error, or any error it wraps, carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrInternal when there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// ValidationErrors accumulates field-level validation failures.
type ValidationErrors struct {
	entity string
	fields map[string]string
}

// NewValidation starts collecting validation failures for entity.
func NewValidation(entity string) *ValidationErrors {
	return &ValidationErrors{entity: entity, fields: make(map[string]string)}
}

// Add records a failure for field. The first message per field wins.
func (v *ValidationErrors) Add(field, message string) {
	if _, ok := v.fields[field]; ok {
		return
	}
	v.fields[field] = message
}

// Err returns nil when nothing was recorded.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &AppError{
		Code:    ErrValidation,
		Message: fmt.Sprintf("invalid %s", v.entity),
		Fields:  v.fields,
	}
}

func formatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}

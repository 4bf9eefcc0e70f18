package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates the entity no longer exists
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates malformed input: out of range rating, missing field, bad time string
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInsufficientPoints indicates a redeem that would drive a balance negative
	ErrorTypeInsufficientPoints ErrorType = "INSUFFICIENT_POINTS"

	// ErrorTypeForbidden indicates the actor may not act on the entity
	ErrorTypeForbidden ErrorType = "FORBIDDEN"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeInternal indicates a storage or infrastructure failure
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewInsufficientPointsError creates a new insufficient points error
func NewInsufficientPointsError(balance, requested int) *AppError {
	return &AppError{
		Type:    ErrorTypeInsufficientPoints,
		Message: fmt.Sprintf("cannot redeem %d points with a balance of %d", requested, balance),
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	return &AppError{Type: ErrorTypeForbidden, Message: message}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsNotFound reports whether err is a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsValidation reports whether err is a VALIDATION AppError.
func IsValidation(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeValidation
}

// IsInsufficientPoints reports whether err is an INSUFFICIENT_POINTS AppError.
func IsInsufficientPoints(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeInsufficientPoints
}

// IsForbidden reports whether err is a FORBIDDEN AppError.
func IsForbidden(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeForbidden
}

package errors

import (
	"fmt"
	"net/http"
)

// HTTPStatuser is implemented by errors that know which HTTP status they map to
type HTTPStatuser interface {
	HTTPStatus() int
}

// ValidationError represents a client input failure
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// HTTPStatus returns 400 Bad Request
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// NotFoundError represents a missing resource
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns 404 Not Found
func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

// AlreadyExistsError represents a uniqueness conflict
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// HTTPStatus returns 409 Conflict
func (e *AlreadyExistsError) HTTPStatus() int {
	return http.StatusConflict
}

// UnavailableError means a dependency is not ready yet. It is transient.
type UnavailableError struct {
	Message string
}

// NewUnavailableError creates a new unavailable error
func NewUnavailableError(message string) *UnavailableError {
	return &UnavailableError{Message: message}
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	return e.Message
}

// HTTPStatus returns 503 Service Unavailable
func (e *UnavailableError) HTTPStatus() int {
	return http.StatusServiceUnavailable
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns 500 Internal Server Error
func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// Detail returns the underlying cause message, or an empty string.
func (e *InternalError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

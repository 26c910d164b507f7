package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Store and domain errors are wrapped with %w so their identity survives
// 3. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrInvalidPage indicates a page number below 1 or past the last page of a listing.
	// API layer should map this to HTTP 404 Not Found.
	ErrInvalidPage = errors.New("invalid page")
)

// ServiceError records which service operation failed. It wraps the
// underlying error, so errors.Is still finds store and domain sentinels.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return e.Service + " service " + e.Op + " operation failed"
	}
	return e.Service + " service " + e.Op + " operation failed: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError for the given service and operation.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}

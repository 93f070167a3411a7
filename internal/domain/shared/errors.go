package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so errors.Is(err, ErrNotFound)
// holds for a NOT_FOUND error with a custom message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NotFoundf returns a NOT_FOUND error with a formatted message
func NotFoundf(format string, args ...any) *DomainError {
	return NewDomainError(ErrNotFound.Code, fmt.Sprintf(format, args...))
}

// InvalidInputf returns an INVALID_INPUT error with a formatted message
func InvalidInputf(format string, args ...any) *DomainError {
	return NewDomainError(ErrInvalidInput.Code, fmt.Sprintf(format, args...))
}

// InvalidStatef returns an INVALID_STATE error with a formatted message
func InvalidStatef(format string, args ...any) *DomainError {
	return NewDomainError(ErrInvalidState.Code, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInUse               = NewDomainError("IN_USE", "Resource is referenced by other records")
)

package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
)

// Domain error codes, as produced by shared.DomainError
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeInUse               = "IN_USE"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidPassword    = "INVALID_PASSWORD"
	ErrCodeAccountLocked      = "ACCOUNT_LOCKED"
	ErrCodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"
	ErrCodeTokenMaxRefresh    = "TOKEN_MAX_REFRESH"
)

// Document rendering error codes
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
)

// Transport error codes
const (
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeInUse:               http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeInvalidPassword:    http.StatusBadRequest,
	ErrCodeAccountLocked:      http.StatusLocked,
	ErrCodeAccountDeactivated: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeTokenMaxRefresh:    http.StatusUnauthorized,

	ErrCodeRenderTimeout: http.StatusGatewayTimeout,
	ErrCodeRenderFailed:  http.StatusInternalServerError,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

var defaultMessages = map[string]string{
	ErrCodeInternal:        "An unexpected error occurred",
	ErrCodeBadRequest:      "Bad request",
	ErrCodeValidation:      "Request validation failed",
	ErrCodeNotFound:        "Resource not found",
	ErrCodeUnauthorized:    "Authentication required",
	ErrCodeForbidden:       "You do not have permission to perform this action",
	ErrCodeRateLimited:     "Too many requests. Please try again later",
	ErrCodePayloadTooLarge: "Request body exceeds maximum allowed size",
}

// DefaultMessage returns a generic user-facing message for code
func DefaultMessage(code string) string {
	if m, ok := defaultMessages[code]; ok {
		return m
	}
	return defaultMessages[ErrCodeInternal]
}

package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenInvalid is used when the auth token is invalid or expired
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeDeadlinePassed is used when the bid deadline is already over
	ErrCodeDeadlinePassed = "ERR_DEADLINE_PASSED"
	// ErrCodeNotOpen is used when an RFP is not accepting bids
	ErrCodeNotOpen = "ERR_NOT_OPEN"
)

// Document error codes
const (
	// ErrCodeInvalidDocumentKind is used for unknown document kinds
	ErrCodeInvalidDocumentKind = "ERR_INVALID_DOCUMENT_KIND"
	// ErrCodeDisallowedContentType is used when a file type is not accepted
	ErrCodeDisallowedContentType = "ERR_DISALLOWED_CONTENT_TYPE"
	// ErrCodeFileTooLarge is used when an upload exceeds the size limit
	ErrCodeFileTooLarge = "ERR_FILE_TOO_LARGE"
	// ErrCodeDocumentLimitExceeded is used when an RFP has too many documents
	ErrCodeDocumentLimitExceeded = "ERR_DOCUMENT_LIMIT_EXCEEDED"
	// ErrCodeUploadNotFound is used when confirming an upload that never landed
	ErrCodeUploadNotFound = "ERR_UPLOAD_NOT_FOUND"
	// ErrCodeStorageUnavailable is used when object storage cannot be reached
	ErrCodeStorageUnavailable = "ERR_STORAGE_UNAVAILABLE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:   http.StatusUnprocessableEntity,
	ErrCodeDeadlinePassed: http.StatusUnprocessableEntity,
	ErrCodeNotOpen:        http.StatusUnprocessableEntity,

	// Document errors
	ErrCodeInvalidDocumentKind:   http.StatusBadRequest,
	ErrCodeDisallowedContentType: http.StatusUnprocessableEntity,
	ErrCodeFileTooLarge:          http.StatusRequestEntityTooLarge,
	ErrCodeDocumentLimitExceeded: http.StatusUnprocessableEntity,
	ErrCodeUploadNotFound:        http.StatusUnprocessableEntity,
	ErrCodeStorageUnavailable:    http.StatusBadGateway,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"DEADLINE_PASSED":         ErrCodeDeadlinePassed,
	"NOT_OPEN":                ErrCodeNotOpen,
	"INVALID_DOCUMENT_KIND":   ErrCodeInvalidDocumentKind,
	"DISALLOWED_CONTENT_TYPE": ErrCodeDisallowedContentType,
	"FILE_TOO_LARGE":          ErrCodeFileTooLarge,
	"DOCUMENT_LIMIT_EXCEEDED": ErrCodeDocumentLimitExceeded,
	"UPLOAD_NOT_FOUND":        ErrCodeUploadNotFound,
	"UPLOAD_URL_FAILED":       ErrCodeStorageUnavailable,
	"STORAGE_CHECK_FAILED":    ErrCodeStorageUnavailable,
	"BAD_REQUEST":             ErrCodeBadRequest,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}

package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error with a stable,
// machine-distinguishable type.
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// Error type identifiers. The pipeline types are part of the ingestion
// contract: callers distinguish them to decide what state now exists.
const (
	TypePayloadError        = "PAYLOAD_ERROR"
	TypeUnsupportedEncoding = "UNSUPPORTED_ENCODING"
	TypeDecodeError         = "DECODE_ERROR"
	TypeIngestionError      = "INGESTION_ERROR"
	TypeAttachmentError     = "ATTACHMENT_ERROR"

	TypeValidationError = "VALIDATION_ERROR"
	TypeNotFound        = "NOT_FOUND"
	TypeUnauthorized    = "UNAUTHORIZED"
	TypeInternalError   = "INTERNAL_ERROR"
)

// ===============================
// PIPELINE ERROR CONSTRUCTORS
// ===============================

// NewPayloadError reports malformed or missing inbound payload data.
func NewPayloadError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypePayloadError,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewUnsupportedEncodingError reports an inline payload whose encoding token
// is not in the registry.
func NewUnsupportedEncodingError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeUnsupportedEncoding,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewDecodeError reports a payload that fails to decode under its declared
// encoding.
func NewDecodeError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeDecodeError,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewIngestionError reports an asset store write failure. No asset exists.
func NewIngestionError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeIngestionError,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewAttachmentError reports a record-attach failure after a successful
// ingestion. The asset exists and is not rolled back; callers must surface
// this partial-success state, never report it as success.
func NewAttachmentError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeAttachmentError,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// ===============================
// GENERIC ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeValidationError,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeInternalError,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// GetServiceError extracts a ServiceError from an error, or wraps it in a
// generic internal one.
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return NewInternalError(err.Error())
}

// IsErrorType checks if an error carries a specific service error type
func IsErrorType(err error, errorType string) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, TypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, TypeValidationError)
}

// IsAttachmentError checks if an error reports the attach-after-ingest
// partial-success state.
func IsAttachmentError(err error) bool {
	return IsErrorType(err, TypeAttachmentError)
}

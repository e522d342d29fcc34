// Package errors provides the standardized error taxonomy for inventory commands
// and REST requests.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEmptyInput            ErrorCode = "EMPTY_INPUT"
	ErrCodeParseFailure          ErrorCode = "PARSE_FAILURE"
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodeProductNotFound       ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock     ErrorCode = "INSUFFICIENT_STOCK"
	ErrCodeUnrecognizedCommand   ErrorCode = "UNRECOGNIZED_COMMAND"
	ErrCodeDuplicateProduct      ErrorCode = "DUPLICATE_PRODUCT"
	ErrCodeInvalidRequest        ErrorCode = "INVALID_REQUEST"
	ErrCodeServerError           ErrorCode = "SERVER_ERROR"
	ErrCodeRepositoryUnavailable ErrorCode = "REPOSITORY_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyInputError is returned when a command carries no text.
func NewEmptyInputError() *StandardError {
	return newError(ErrCodeEmptyInput, "Command text is required", "")
}

// NewParseFailureError is returned when a gate matched but its pattern did not.
// usage is shown to the operator verbatim.
func NewParseFailureError(usage string) *StandardError {
	return newError(ErrCodeParseFailure, usage, "")
}

// NewValidationError creates a field constraint violation.
func NewValidationError(field, message string) *StandardError {
	return newError(ErrCodeValidationFailed, message, "").WithMetadata("field", field)
}

// NewProductNotFoundError creates a not-found error for a product name or id.
func NewProductNotFoundError(key string) *StandardError {
	return newError(ErrCodeProductNotFound, fmt.Sprintf("Product not found for name: %s", key), "")
}

// NewInsufficientStockError carries the available and requested quantities.
func NewInsufficientStockError(available, requested float64) *StandardError {
	return newError(ErrCodeInsufficientStock, "Not enough stock for this product", "").
		WithMetadata("available", available).
		WithMetadata("requested", requested)
}

// NewUnrecognizedCommandError is the help fallback.
func NewUnrecognizedCommandError() *StandardError {
	return newError(ErrCodeUnrecognizedCommand, "Could not understand command. Supported examples:", "")
}

// NewDuplicateProductError rejects a second product with the same name.
func NewDuplicateProductError(name string) *StandardError {
	return newError(ErrCodeDuplicateProduct, fmt.Sprintf("A product named %s already exists", name), "").
		WithMetadata("field", "name")
}

// NewInvalidRequestError reports a malformed REST request body.
func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request body", details)
}

// NewServerError wraps an unexpected failure. The cause is kept for logging
// and never rendered to clients.
func NewServerError(err error) *StandardError {
	se := newError(ErrCodeServerError, "Server error while executing command", "")
	se.cause = err
	if err != nil {
		se.Details = err.Error()
	}
	return se
}

// NewRepositoryUnavailableError is used by readiness checks.
func NewRepositoryUnavailableError(store string, err error) *StandardError {
	se := newError(ErrCodeRepositoryUnavailable, fmt.Sprintf("%s unavailable", store), err.Error())
	se.cause = err
	return se
}

// ==========================
// 3. Mapping to responses
// ==========================

// responseTypes maps internal error codes to envelope type tags.
var responseTypes = map[ErrorCode]string{
	ErrCodeEmptyInput:            "validation",
	ErrCodeParseFailure:          "parse",
	ErrCodeValidationFailed:      "validation",
	ErrCodeProductNotFound:       "notFound",
	ErrCodeInsufficientStock:     "stock",
	ErrCodeUnrecognizedCommand:   "help",
	ErrCodeDuplicateProduct:      "validation",
	ErrCodeInvalidRequest:        "validation",
	ErrCodeServerError:           "server",
	ErrCodeRepositoryUnavailable: "server",
}

// ResponseType returns the envelope type tag for code.
func ResponseType(code ErrorCode) string {
	if t, ok := responseTypes[code]; ok {
		return t
	}
	return "server"
}

// HTTPStatus returns the HTTP status for code.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeEmptyInput, ErrCodeParseFailure, ErrCodeValidationFailed,
		ErrCodeInsufficientStock, ErrCodeUnrecognizedCommand, ErrCodeDuplicateProduct,
		ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeProductNotFound:
		return http.StatusNotFound
	case ErrCodeRepositoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsUserFacing reports whether code is an expected outcome rather than a fault.
func IsUserFacing(code ErrorCode) bool {
	return code != ErrCodeServerError && code != ErrCodeRepositoryUnavailable
}

// ==========================
// 4. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError. Anything unknown becomes
// a server error.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewServerError(err)
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeServerError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeServerError
}

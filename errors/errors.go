package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode classifies pipeline failures
type ErrorCode int

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_CONFIG_MISSING
	ErrorCode_SOURCE_UNAVAILABLE
	ErrorCode_SOURCE_GRAPHQL
	ErrorCode_LLM_FAILED
	ErrorCode_EMBEDDING_FAILED
	ErrorCode_STORAGE_FAILED
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_DB_CONSTRAINT_VIOLATION
	ErrorCode_WEBHOOK_SIGNATURE
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:                "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:        "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:               "NOT_FOUND",
	ErrorCode_CONFIG_MISSING:          "CONFIG_MISSING",
	ErrorCode_SOURCE_UNAVAILABLE:      "SOURCE_UNAVAILABLE",
	ErrorCode_SOURCE_GRAPHQL:          "SOURCE_GRAPHQL",
	ErrorCode_LLM_FAILED:              "LLM_FAILED",
	ErrorCode_EMBEDDING_FAILED:        "EMBEDDING_FAILED",
	ErrorCode_STORAGE_FAILED:          "STORAGE_FAILED",
	ErrorCode_DB_QUERY_FAILED:         "DB_QUERY_FAILED",
	ErrorCode_DB_CONSTRAINT_VIOLATION: "DB_CONSTRAINT_VIOLATION",
	ErrorCode_WEBHOOK_SIGNATURE:       "WEBHOOK_SIGNATURE",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

// Configuration Errors - fatal at startup, never retried
func ErrConfigMissing(variable string) AppError {
	return AppError{
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_CONFIG_MISSING,
		Message:  fmt.Sprintf("%s is required", variable),
	}
}

// Transcript Source Errors
func ErrSourceUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_SOURCE_UNAVAILABLE,
		Message:  "Transcript source request failed",
	}
}

func ErrSourceGraphQL(detail string) AppError {
	return AppError{
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_SOURCE_GRAPHQL,
		Message:  "Transcript source returned GraphQL errors",
	}.WithDetail("errors", detail)
}

// Downstream AI Errors - caught per meeting, degrade to raw data
func ErrLLMFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_LLM_FAILED,
		Message:  fmt.Sprintf("LLM call failed: %s", operation),
	}
}

func ErrEmbeddingFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_EMBEDDING_FAILED,
		Message:  "Embedding generation failed",
	}
}

// Storage Errors
func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

// Database Errors
func ErrDBQueryFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}.WithDetail("operation", operation)
}

func ErrDBConstraintViolation(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_DB_CONSTRAINT_VIOLATION,
		Message:  "Database constraint violation",
	}
}

// Webhook Errors
func ErrWebhookSignature() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_WEBHOOK_SIGNATURE,
		Message:  "Webhook signature verification failed",
	}
}

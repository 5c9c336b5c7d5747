// Package errors provides standardized error handling for the notification pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Event consumption
	ErrCodeEventDecodeFailed    ErrorCode = "EVENT_DECODE_FAILED"
	ErrCodeMissingRequiredField ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrCodeHandlerPanic         ErrorCode = "HANDLER_PANIC"

	// Dispatch / delivery
	ErrCodeInvalidRecipientAddress ErrorCode = "INVALID_RECIPIENT_ADDRESS"
	ErrCodeTransportFailed         ErrorCode = "TRANSPORT_FAILED"
	ErrCodeUserOptedOut            ErrorCode = "USER_OPTED_OUT"
	ErrCodeRetryNotPermitted       ErrorCode = "RETRY_NOT_PERMITTED"
	ErrCodeRetryExhausted          ErrorCode = "RETRY_EXHAUSTED"

	// Templates
	ErrCodeTemplateNotFound       ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateRenderFallback ErrorCode = "TEMPLATE_RENDER_FALLBACK"

	// Storage
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeRecordNotFound           ErrorCode = "RECORD_NOT_FOUND"

	// Event log
	ErrCodeEventLogUnavailable ErrorCode = "EVENT_LOG_UNAVAILABLE"
	ErrCodeCommitFailed        ErrorCode = "COMMIT_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewEventDecodeFailedError is recovered locally by raw-data wrapping; it is
// logged, never raised past the consumer loop.
func NewEventDecodeFailedError(topic string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventDecodeFailed,
		Message:   "Event payload could not be decoded",
		Details:   fmt.Sprintf("topic: %s, error: %s", topic, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingRequiredFieldError marks an event discarded for missing fields.
func NewMissingRequiredFieldError(topic, field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingRequiredField,
		Message:   "Event is missing a required field",
		Details:   fmt.Sprintf("topic: %s, field: %s", topic, field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRecipientAddressError creates a non-retryable address error;
// no transport attempt is made for these.
func NewInvalidRecipientAddressError(address string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRecipientAddress,
		Message:   "Recipient address failed validation",
		Details:   fmt.Sprintf("address: %q", address),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportFailedError creates a retryable delivery error.
func NewTransportFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetryNotPermittedError rejects a retry of a record that is not FAILED
// or has exhausted its attempts.
func NewRetryNotPermittedError(recordID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetryNotPermitted,
		Message:   "Notification record is not eligible for retry",
		Details:   fmt.Sprintf("recordId: %s, %s", recordID, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "No active template for type",
		Details:   fmt.Sprintf("templateType: %s", templateType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable lookup error.
func NewRecordNotFoundError(recordID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "Notification record not found",
		Details:   fmt.Sprintf("recordId: %s", recordID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventLogUnavailableError creates a retryable event log connectivity error.
func NewEventLogUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventLogUnavailable,
		Message:   "Event log read failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTransportFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeEventLogUnavailable:
		return 3

	case ErrCodeCommitFailed:
		return 1

	default:
		return 0 // validation and business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EVENT") || strings.Contains(codeStr, "HANDLER") || strings.Contains(codeStr, "COMMIT"):
		return "CONSUMER"
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "RECORD"):
		return "STORAGE"
	case strings.Contains(codeStr, "TRANSPORT") || strings.Contains(codeStr, "RETRY") || strings.Contains(codeStr, "ADDRESS") || strings.Contains(codeStr, "OPTED"):
		return "DELIVERY"
	case strings.Contains(codeStr, "MISSING") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

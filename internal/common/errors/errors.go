// Package errors provides the error taxonomy shared by the CanchApp client.
//
// Every failure surfaced to a caller is a *StandardError whose Message is safe
// to show to the user as-is. Nothing is retried automatically: Retryable only
// hints whether repeating the same user action could succeed.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Local validation, raised before any network call.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// Local slot click rejected by the booking grid rules.
	ErrCodeSlotSelectionRejected ErrorCode = "SLOT_SELECTION_REJECTED"
	// Booking wizard step invoked from a state that does not allow it.
	ErrCodeWizardStateInvalid ErrorCode = "WIZARD_STATE_INVALID"
	// Operation requires a logged-in user.
	ErrCodeNotAuthenticated ErrorCode = "NOT_AUTHENTICATED"
	// Logged-in user lacks the role the operation needs.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"

	// Backend answered with a non-2xx status.
	ErrCodeRequestFailed ErrorCode = "REQUEST_FAILED"
	// Transport failure, backend not reachable.
	ErrCodeBackendUnreachable ErrorCode = "BACKEND_UNREACHABLE"
	// 2xx answer whose body could not be decoded.
	ErrCodeResponseDecodeFailed ErrorCode = "RESPONSE_DECODE_FAILED"

	// Session or wizard persistence failed.
	ErrCodeStoreFailed ErrorCode = "STORE_FAILED"
)

// Fallback messages used when the backend gives nothing usable.
const (
	MsgUnknownError = "unknown error"
	MsgGeneric      = "something went wrong, please try again"
)

// StandardError represents a structured client error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Retryable  bool                   `json:"retryable"`
	HTTPStatus int                    `json:"httpStatus,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`

	cause error
}

// Error returns the user-facing message. Use Code and Details for diagnostics.
func (e *StandardError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying transport or decode error, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// String is the diagnostic form used in logs.
func (e *StandardError) String() string {
	if e.Details == "" {
		return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
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

// NewValidationError creates a local validation error. message is shown to
// the user; field, when set, names the offending form field.
func NewValidationError(field, message string) *StandardError {
	e := &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	if field != "" {
		e.Details = fmt.Sprintf("field: %s", field)
		e.Metadata = map[string]interface{}{"field": field}
	}
	return e
}

// NewSlotSelectionError creates a slot grid rejection.
func NewSlotSelectionError(slot, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSlotSelectionRejected,
		Message:   message,
		Details:   fmt.Sprintf("slot: %s", slot),
		Retryable: false,
		Metadata:  map[string]interface{}{"slot": slot},
		Timestamp: time.Now().UTC(),
	}
}

// NewWizardStateError reports a wizard step called from the wrong state.
func NewWizardStateError(step, state string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWizardStateInvalid,
		Message:   "this booking step is not available right now",
		Details:   fmt.Sprintf("step %s not allowed in state %s", step, state),
		Retryable: false,
		Metadata:  map[string]interface{}{"step": step, "state": state},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotAuthenticatedError reports a missing session.
func NewNotAuthenticatedError(details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeNotAuthenticated,
		Message:    "you must be logged in",
		Details:    details,
		Retryable:  false,
		HTTPStatus: 401,
		Timestamp:  time.Now().UTC(),
	}
}

// NewForbiddenError reports a session without the required role.
func NewForbiddenError(role string) *StandardError {
	return &StandardError{
		Code:       ErrCodeForbidden,
		Message:    "you do not have access to this section",
		Details:    fmt.Sprintf("required role: %s", role),
		Retryable:  false,
		HTTPStatus: 403,
		Timestamp:  time.Now().UTC(),
	}
}

// NewRequestFailedError wraps a non-2xx backend answer. message is the
// backend's error text, already resolved to a fallback when absent.
func NewRequestFailedError(method, path string, status int, message string) *StandardError {
	return &StandardError{
		Code:       ErrCodeRequestFailed,
		Message:    message,
		Details:    fmt.Sprintf("%s %s -> %d", method, path, status),
		Retryable:  status >= 500,
		HTTPStatus: status,
		Metadata:   map[string]interface{}{"method": method, "path": path},
		Timestamp:  time.Now().UTC(),
	}
}

// NewBackendUnreachableError wraps a transport failure.
func NewBackendUnreachableError(method, path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnreachable,
		Message:   "could not reach the server, check your connection",
		Details:   fmt.Sprintf("%s %s: %v", method, path, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"method": method, "path": path},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewResponseDecodeError wraps an unparseable 2xx body.
func NewResponseDecodeError(method, path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseDecodeFailed,
		Message:   MsgGeneric,
		Details:   fmt.Sprintf("%s %s: %v", method, path, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"method": method, "path": path},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStoreError wraps a session or wizard persistence failure.
func NewStoreError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreFailed,
		Message:   "could not save local session state",
		Details:   fmt.Sprintf("%s: %v", op, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// As extracts a *StandardError from err's chain.
func As(err error) (*StandardError, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	se, ok := As(err)
	return ok && se.Code == code
}

// UserMessage returns the text to display for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if se, ok := As(err); ok && se.Message != "" {
		return se.Message
	}
	return MsgGeneric
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "SLOT"):
		return "VALIDATION"
	case strings.Contains(codeStr, "WIZARD"):
		return "FLOW"
	case code == ErrCodeNotAuthenticated || code == ErrCodeForbidden:
		return "AUTH"
	case strings.Contains(codeStr, "REQUEST") || strings.Contains(codeStr, "BACKEND") || strings.Contains(codeStr, "RESPONSE"):
		return "BACKEND"
	case strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	default:
		return "OTHER"
	}
}

// internal/common/errors/handler.go
package errors

import (
	"time"
)

// ErrCodeInternal marks errors that did not come from this package.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// ErrorHandler reports command failures with standardized error handling
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleCommandError logs err and returns the message to show the user.
// Rejections of user input are logged as warnings, everything else as errors.
func (h *ErrorHandler) HandleCommandError(command string, err error) string {
	if err == nil {
		return ""
	}
	stdErr := h.normalizeError(err)
	h.logError(command, stdErr)
	return stdErr.Message
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   MsgGeneric,
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) logError(command string, stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	category := GetErrorCategory(stdErr.Code)
	fields := map[string]interface{}{
		"command":       command,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": category,
	}
	if stdErr.HTTPStatus != 0 {
		fields["httpStatus"] = stdErr.HTTPStatus
	}

	switch category {
	case "VALIDATION", "FLOW", "AUTH":
		h.logger.Warn("Command rejected", fields)
	default:
		h.logger.Error("Command failed", fields)
	}
}

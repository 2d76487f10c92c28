package server

import (
	"errors"

	"github.com/localrivet/mdpack/internal/errortypes"
)

// ErrorResponse represents the structured error payload reported to
// protocol clients when a handler fails.
type ErrorResponse struct {
	Status     string                 `json:"status"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
}

// Error response codes
const (
	StatusCodeNotFound        = "NOT_FOUND"
	StatusCodeInvalidArgument = "INVALID_ARGUMENT"
	StatusCodeSessionNotReady = "SESSION_NOT_READY"
	StatusCodeTransportError  = "TRANSPORT_FAILURE"
	StatusCodeTimeout         = "TIMEOUT"
	StatusCodeConfigError     = "CONFIG_ERROR"
	StatusCodeInternalError   = "INTERNAL_ERROR"
	StatusCodeUnknownError    = "UNKNOWN_ERROR"
)

// ErrorCode maps an error to its stable protocol error code.
func ErrorCode(err error) string {
	var appErr *errortypes.AppError
	if !errors.As(err, &appErr) {
		return StatusCodeUnknownError
	}

	switch appErr.Type {
	case errortypes.ErrorTypeNotFound:
		return StatusCodeNotFound
	case errortypes.ErrorTypeInvalidArgument:
		return StatusCodeInvalidArgument
	case errortypes.ErrorTypeSessionNotReady:
		return StatusCodeSessionNotReady
	case errortypes.ErrorTypeTransport:
		return StatusCodeTransportError
	case errortypes.ErrorTypeTimeout:
		return StatusCodeTimeout
	case errortypes.ErrorTypeConfig:
		return StatusCodeConfigError
	case errortypes.ErrorTypeInternal:
		return StatusCodeInternalError
	default:
		return StatusCodeUnknownError
	}
}

// ErrorToResponse converts an error to a standardized ErrorResponse.
func ErrorToResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Status:  "error",
		Code:    ErrorCode(err),
		Message: err.Error(),
	}

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		if len(appErr.Fields) > 0 {
			resp.Details = appErr.Fields
		}
		resp.StackTrace = appErr.StackInfo
	}

	return resp
}

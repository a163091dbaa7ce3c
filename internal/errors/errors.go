package errors

import "fmt"

// ErrorCode represents a Studio error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrMissingCredential ErrorCode = "MISSING_CREDENTIAL" // 401
	ErrUpstreamStatus    ErrorCode = "UPSTREAM_STATUS"    // 502
	ErrTransport         ErrorCode = "TRANSPORT"          // 502
	ErrBadPayload        ErrorCode = "BAD_PAYLOAD"        // 502
	ErrProvider          ErrorCode = "PROVIDER_ERROR"     // 502
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// StudioError represents a structured error with code, status, and details.
type StudioError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *StudioError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *StudioError {
	return &StudioError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a session cannot be found.
func NewNotFound(id string) *StudioError {
	return &StudioError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("session not found: %s", id),
		Details: map[string]any{"session_id": id},
	}
}

// NewMissingCredential creates a 401 error for an absent API credential.
// Fatal only at capability construction time, never mid-turn.
func NewMissingCredential(name string) *StudioError {
	return &StudioError{
		Code:    ErrMissingCredential,
		Status:  401,
		Message: fmt.Sprintf("%s is not configured", name),
		Details: map[string]any{"credential": name},
	}
}

// NewUpstreamStatus creates a 502 error for a non-2xx response from an
// external capability. The body excerpt is truncated by the caller.
func NewUpstreamStatus(status int, body string) *StudioError {
	return &StudioError{
		Code:    ErrUpstreamStatus,
		Status:  502,
		Message: fmt.Sprintf("upstream returned status %d: %s", status, body),
		Details: map[string]any{"upstream_status": status},
	}
}

// NewTransport creates a 502 error for a network-level failure.
func NewTransport(err error) *StudioError {
	return &StudioError{
		Code:    ErrTransport,
		Status:  502,
		Message: fmt.Sprintf("transport error: %v", err),
	}
}

// NewBadPayload creates a 502 error for a malformed upstream response.
func NewBadPayload(err error) *StudioError {
	return &StudioError{
		Code:    ErrBadPayload,
		Status:  502,
		Message: fmt.Sprintf("malformed upstream payload: %v", err),
	}
}

// NewProvider creates a 502 error for a provider-reported failure.
func NewProvider(msg string) *StudioError {
	return &StudioError{
		Code:    ErrProvider,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *StudioError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &StudioError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a StudioError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*StudioError); ok {
		return sErr.Code == code
	}
	return false
}

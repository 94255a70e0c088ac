package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Stable error codes synthesized by this client. Backend-defined codes are
// surfaced verbatim and are not enumerated here.
const (
	// CodeTimeout means the request exceeded its deadline. Synthesized
	// locally; the backend call may still complete, but its result is ignored.
	CodeTimeout = "TIMEOUT"

	// CodeUnknown means the backend failed without a specific code.
	CodeUnknown = "UNKNOWN_ERROR"
)

// APIError is a classified failure from the ingestion backend.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s: %s", e.Code, e.Message)
}

// errorBody is the backend's error envelope: { "error": { code, message } }.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classifyTransportErr converts a transport-level failure into an APIError.
// Deadline and net timeouts become TIMEOUT, everything else UNKNOWN_ERROR.
func classifyTransportErr(err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Code: CodeTimeout, Message: "request exceeded deadline"}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &APIError{Code: CodeTimeout, Message: "request exceeded deadline"}
	}
	return &APIError{Code: CodeUnknown, Message: err.Error()}
}

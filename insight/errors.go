package insight

import (
	"errors"
	"fmt"
)

// APIError is a response the collaborator marked as failed (non-2xx).
// Message is the body's "error" field.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return e.Message
}

// TransportError means the round trip did not complete.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means a response arrived but its body could not be parsed or
// did not match the expected schema.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriteError means the response was fine but the caller's writer failed,
// e.g. a full disk during DownloadReport.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: write: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// InvalidRequestError is returned before any I/O when request parameters
// fail validation.
type InvalidRequestError struct {
	Err error
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *InvalidRequestError) Unwrap() error { return e.Err }

// IsServerError reports whether err carries a server-reported failure.
func IsServerError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// ServerMessage returns the server-supplied message when err is an
// *APIError, and err.Error() otherwise.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

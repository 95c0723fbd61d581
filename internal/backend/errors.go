package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
)

// DefaultErrorMessage is used when a failed response carries no message.
const DefaultErrorMessage = "API Error"

// Error is a non-2xx reply from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

func (e *Error) UpstreamStatus() int     { return e.Status }
func (e *Error) UpstreamMessage() string { return e.Message }

// TransportError means the request never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func messageFrom(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return DefaultErrorMessage
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

// AsAppError converts a client error into a typed application error that keeps
// the backend's message. Typed errors and nil pass through unchanged.
func AsAppError(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return pkgerrors.Wrap(codeForStatus(apiErr.Status), err, apiErr.Message)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pharmacy backend unreachable")
	}

	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unexpected backend response")
}

func codeForStatus(status int) pkgerrors.Code {
	switch {
	case status == http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case status == http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status == http.StatusConflict:
		return pkgerrors.CodeConflict
	case status == http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case status >= 400 && status < 500:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeDependency
	}
}

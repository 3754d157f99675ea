package iris

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ErrInvalidConfiguration marks a client that cannot be built or used as
// configured. It is never retried.
var ErrInvalidConfiguration = errors.New("iris: invalid configuration")

// ErrUserIDRequired is returned by user-scoped operations when no acting user
// is set. It matches ErrInvalidConfiguration.
var ErrUserIDRequired = fmt.Errorf("%w: user id required (set one with WithUserID or AsUser)", ErrInvalidConfiguration)

// ErrInvalidSignature is returned when a webhook signature does not match.
var ErrInvalidSignature = errors.New("iris: invalid webhook signature")

// NetworkError reports a transport failure: the request never produced an
// HTTP response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("iris: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode  int
	Message     string
	FieldErrors map[string][]string
	RequestID   string
	Body        string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	s := fmt.Sprintf("iris: %s (HTTP %d)", msg, e.StatusCode)
	if e.RequestID != "" {
		s += " [request_id=" + e.RequestID + "]"
	}
	return s
}

// ErrorsFor returns the messages reported for one field.
func (e *APIError) ErrorsFor(field string) []string {
	return e.FieldErrors[field]
}

// IsNotFound reports a 404: the resource does not exist or belongs to
// another user.
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsRateLimited reports a 429. Such responses are not retried.
func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// IsServerError reports a 5xx. GET requests that fail this way are retried.
func (e *APIError) IsServerError() bool { return e.StatusCode >= 500 }

// AuthenticationError is a 401 or 403 response.
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Unwrap() error { return &e.APIError }

// ValidationError is a 422 response with per-field messages.
type ValidationError struct {
	APIError
}

func (e *ValidationError) Unwrap() error { return &e.APIError }

func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return e.APIError.Error()
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: invalid %s", e.APIError.Error(), strings.Join(fields, ", "))
}

// TimeoutError means Chat.Execute stopped watching a workflow. The workflow
// itself keeps running server-side.
type TimeoutError struct {
	WorkflowID string
	Elapsed    time.Duration
	Last       *WorkflowStatus
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("iris: workflow %s still running after %s", e.WorkflowID, e.Elapsed.Round(time.Millisecond))
}

// WorkflowFailedError is a workflow the server reported as failed.
type WorkflowFailedError struct {
	WorkflowID string
	Reason     string
	Status     *WorkflowStatus
}

func (e *WorkflowFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("iris: workflow %s failed", e.WorkflowID)
	}
	return fmt.Sprintf("iris: workflow %s failed: %s", e.WorkflowID, e.Reason)
}

package oaikit

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/types"
)

// ErrorKind classifies every error returned by the library.
type ErrorKind int

const (
	// KindMissingConfiguration: credential absent or a required field unset.
	KindMissingConfiguration ErrorKind = iota + 1
	// KindInvalidArgument: a value outside its allowed set.
	KindInvalidArgument
	// KindTransport: network failure, timeout or connection reset.
	KindTransport
	// KindResponseShape: the remote payload could not be decoded into the
	// declared model.
	KindResponseShape
	// KindRemote: the service returned a structured error payload.
	KindRemote
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingConfiguration:
		return "missing configuration"
	case KindInvalidArgument:
		return "invalid argument"
	case KindTransport:
		return "transport failure"
	case KindResponseShape:
		return "response shape mismatch"
	case KindRemote:
		return "remote error"
	}
	return "unknown"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindMissingConfiguration:
		return types.ErrMissingConfiguration
	case KindInvalidArgument:
		return types.ErrInvalidArgument
	case KindTransport:
		return types.ErrTransport
	case KindResponseShape:
		return types.ErrResponseShape
	case KindRemote:
		return types.ErrRemote
	}
	return nil
}

// Sentinel errors, one per ErrorKind, for use with errors.Is.
//
// Example:
//
//	if errors.Is(err, oaikit.ErrRemote) {
//	    // the service answered with an error payload
//	}
var (
	ErrMissingConfiguration = types.ErrMissingConfiguration
	ErrInvalidArgument      = types.ErrInvalidArgument
	ErrTransport            = types.ErrTransport
	ErrResponseShape        = types.ErrResponseShape
	ErrRemote               = types.ErrRemote
)

// APIError is the base error type for all oaikit errors.
// All remote error types embed it; use AsAPIError to reach it from any of
// them.
type APIError struct {
	// Kind is the error category.
	Kind ErrorKind

	// Message is the human-readable error message.
	Message string

	// StatusCode is the HTTP status code (0 when no response was received).
	StatusCode int

	// Code, Type and Param mirror the vendor error payload.
	Code  string
	Type  string
	Param string

	// Endpoint is the API path the error belongs to, e.g. "chat/completions".
	Endpoint string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Endpoint != "" {
		b.WriteString(" [")
		b.WriteString(e.Endpoint)
		b.WriteString("]")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [code=%s]", e.Code)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *APIError) Is(target error) bool {
	if s := e.Kind.sentinel(); s != nil && target == s {
		return true
	}
	if t, ok := target.(*APIError); ok {
		return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
	}
	return false
}

// IsRetryable returns true if this error represents a retryable condition.
// Base implementation returns true only for transport failures.
func (e *APIError) IsRetryable() bool {
	return e.Kind == KindTransport
}

func (e *APIError) apiError() *APIError {
	return e
}

// AsAPIError returns the APIError carried by err, whether err is a plain
// *APIError or one of the typed remote errors embedding it.
func AsAPIError(err error) (*APIError, bool) {
	var carrier interface{ apiError() *APIError }
	if errors.As(err, &carrier) {
		return carrier.apiError(), true
	}
	return nil, false
}

func newError(kind ErrorKind, endpoint string, err error, format string, args ...any) *APIError {
	return &APIError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Endpoint: endpoint,
		Err:      err,
	}
}

// invalidArgument builds a KindInvalidArgument error.
func invalidArgument(endpoint, format string, args ...any) error {
	return newError(KindInvalidArgument, endpoint, nil, format, args...)
}

// missingField builds a KindMissingConfiguration error for a required
// request field.
func missingField(endpoint, field string) error {
	return newError(KindMissingConfiguration, endpoint, nil, "%s is required", field)
}

// transportError wraps a network-level failure.
func transportError(endpoint string, err error) error {
	return newError(KindTransport, endpoint, err, "%v", err)
}

// responseShapeError wraps a decode or validation failure of a response.
func responseShapeError(endpoint string, err error) error {
	return newError(KindResponseShape, endpoint, err, "%v", err)
}

// classify maps an error from a lower layer onto an *APIError of the matching
// kind. Errors that already carry an *APIError are returned unchanged.
func classify(endpoint string, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := AsAPIError(err); ok {
		if e.Endpoint == "" {
			e.Endpoint = endpoint
		}
		return err
	}
	for _, kind := range []ErrorKind{KindMissingConfiguration, KindInvalidArgument, KindResponseShape, KindTransport, KindRemote} {
		if errors.Is(err, kind.sentinel()) {
			return newError(kind, endpoint, err, "%v", err)
		}
	}
	return newError(KindInvalidArgument, endpoint, err, "%v", err)
}

// AuthenticationError represents an authentication failure (401).
type AuthenticationError struct {
	APIError
}

// PermissionError represents a permission denied error (403).
type PermissionError struct {
	APIError
}

// NotFoundError represents a missing resource (404).
type NotFoundError struct {
	APIError
}

// RateLimitError represents a rate limit exceeded error (429).
type RateLimitError struct {
	APIError

	// RetryAfter is how long the service asked the caller to wait.
	RetryAfter time.Duration
}

// IsRetryable returns true for rate limit errors.
func (e *RateLimitError) IsRetryable() bool {
	return true
}

// ContextWindowExceededError is returned when the input does not fit the
// model's context window.
type ContextWindowExceededError struct {
	APIError
}

// ContentPolicyViolationError is returned when input or output violates the
// content policy.
type ContentPolicyViolationError struct {
	APIError
}

// InvalidRequestError represents an invalid request error (400, 422).
type InvalidRequestError struct {
	APIError
}

// ServiceUnavailableError represents a server-side failure (5xx).
type ServiceUnavailableError struct {
	APIError
}

// IsRetryable returns true for server-side failures.
func (e *ServiceUnavailableError) IsRetryable() bool {
	return true
}

// ParseRemoteError builds a typed remote error from a non-2xx response.
//
// The vendor payload {"error":{"message","type","param","code"}} is parsed
// when present; otherwise the raw body becomes the message. Status codes map
// to the typed errors above; 400 responses are further classified by code
// and message content.
func ParseRemoteError(statusCode int, header http.Header, body []byte) error {
	base := APIError{Kind: KindRemote, StatusCode: statusCode}

	if gjson.ValidBytes(body) {
		payload := gjson.GetBytes(body, "error")
		if payload.Type == gjson.String {
			base.Message = payload.String()
		} else if payload.IsObject() {
			base.Message = payload.Get("message").String()
			base.Type = payload.Get("type").String()
			base.Param = payload.Get("param").String()
			base.Code = payload.Get("code").String()
		}
	}
	if base.Message == "" {
		base.Message = strings.TrimSpace(string(body))
	}
	if base.Message == "" {
		base.Message = fmt.Sprintf("HTTP %d %s", statusCode, http.StatusText(statusCode))
	}

	switch {
	case statusCode == http.StatusUnauthorized:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusForbidden:
		return &PermissionError{APIError: base}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: base}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{APIError: base, RetryAfter: parseRetryAfter(header)}
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		code := strings.ToLower(base.Code)
		msg := strings.ToLower(base.Message)
		if code == "context_length_exceeded" ||
			strings.Contains(msg, "maximum context length") ||
			strings.Contains(msg, "too many tokens") {
			return &ContextWindowExceededError{APIError: base}
		}
		if code == "content_policy_violation" || code == "content_filter" ||
			(strings.Contains(msg, "content") && strings.Contains(msg, "policy")) {
			return &ContentPolicyViolationError{APIError: base}
		}
		return &InvalidRequestError{APIError: base}
	case statusCode >= 500:
		return &ServiceUnavailableError{APIError: base}
	}
	return &base
}

// parseRetryAfter reads Retry-After (seconds or HTTP date) and the
// retry-after-ms extension header.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	if ms := h.Get("Retry-After-Ms"); ms != "" {
		if v, err := strconv.ParseFloat(ms, 64); err == nil && v > 0 {
			return time.Duration(v * float64(time.Millisecond))
		}
	}
	ra := h.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(ra, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(ra); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// Package callback provides lifecycle hooks for API requests and realtime
// session traffic.
//
// HTTP hooks run around every endpoint call: before the request is sent,
// after a successful response and after a failure. Realtime hooks run for
// every event a realtime session sends or receives. The metrics package
// builds its Prometheus collectors on these hooks.
//
// Thread Safety: All callback types must be safe for concurrent calls.
// The Registry manages callbacks thread-safely using the snapshot pattern.
package callback

import (
	"context"
	"time"
)

// BeforeRequestCallback is called before an HTTP request is sent.
//
// Returning an error aborts the request; the error is returned to the caller
// and no network traffic happens.
//
// Thread Safety: Must be safe for concurrent calls.
//
// Example:
//
//	func logRequest(ctx context.Context, event *BeforeRequestEvent) error {
//	    log.Printf("%s %s (%s)", event.Method, event.Endpoint, event.RequestID)
//	    return nil
//	}
type BeforeRequestCallback func(ctx context.Context, event *BeforeRequestEvent) error

// SuccessCallback is called after a 2xx response has been decoded.
//
// Success callbacks are informational only.
//
// Thread Safety: Must be safe for concurrent calls.
type SuccessCallback func(ctx context.Context, event *SuccessEvent)

// FailureCallback is called after a failed request, whatever the failure
// category (local validation excepted, which never reaches the network).
//
// Thread Safety: Must be safe for concurrent calls.
type FailureCallback func(ctx context.Context, event *FailureEvent)

// RealtimeCallback is called for every realtime event sent or received.
//
// Thread Safety: Must be safe for concurrent calls.
//
// Example:
//
//	func trace(ctx context.Context, event *RealtimeEvent) {
//	    log.Printf("%s %s", event.Direction, event.Type)
//	}
type RealtimeCallback func(ctx context.Context, event *RealtimeEvent)

// BeforeRequestEvent contains data for before-request callbacks.
type BeforeRequestEvent struct {
	// RequestID uniquely identifies this request
	RequestID string

	// Endpoint is the API path template, e.g. "chat/completions" or "batches/{id}"
	Endpoint string

	// Method is the HTTP method
	Method string

	// Model is the model named in the request ("" when not applicable)
	Model string

	// Request is the typed request descriptor (nil for bodiless calls)
	Request any

	// StartTime is when the request started
	StartTime time.Time
}

// SuccessEvent contains data for success callbacks.
type SuccessEvent struct {
	RequestID string
	Endpoint  string
	Method    string
	Model     string

	// StatusCode is the HTTP status of the response
	StatusCode int

	// Request is the typed request descriptor (nil for bodiless calls)
	Request any

	// Response is the decoded response (nil for raw byte responses)
	Response any

	StartTime time.Time
	EndTime   time.Time

	// Duration is the total request duration (EndTime - StartTime)
	Duration time.Duration

	// Tokens is the total number of tokens reported by the response (0 if not available)
	Tokens int
}

// FailureEvent contains data for failure callbacks.
type FailureEvent struct {
	RequestID string
	Endpoint  string
	Method    string
	Model     string

	// StatusCode is the HTTP status (0 for transport failures)
	StatusCode int

	Request any

	// Error is the error returned to the caller
	Error error

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Direction tells whether a realtime event was sent or received.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// RealtimeEvent contains data for realtime callbacks.
type RealtimeEvent struct {
	// SessionID is the server-assigned session id once known
	SessionID string

	// Direction is DirectionSent or DirectionReceived
	Direction Direction

	// Type is the event type, e.g. "response.audio.delta"
	Type string

	// EventID is the event_id carried by the event, if any
	EventID string

	// Payload is the raw JSON of the event
	Payload []byte

	// Timestamp is when the event crossed the transport
	Timestamp time.Time
}

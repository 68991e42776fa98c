package oaikit

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/blue-context/oaikit/internal/testutil"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-test-123")

	if got := RequestIDFromContext(ctx); got != "req-test-123" {
		t.Errorf("RequestIDFromContext() = %s, want req-test-123", got)
	}
	if got := requestID(ctx); got != "req-test-123" {
		t.Errorf("requestID() = %s, want the caller's id", got)
	}
}

func TestRequestIDFromContext_NotFound(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %s, want empty string", got)
	}
}

func TestWithGeneratedRequestID(t *testing.T) {
	ctx := WithGeneratedRequestID(context.Background())

	id := RequestIDFromContext(ctx)
	if !strings.HasPrefix(id, "req_") {
		t.Fatalf("request ID should start with 'req_', got %s", id)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(id, "req_")); err != nil {
		t.Errorf("suffix is not a UUID: %v", err)
	}
}

func TestGenerateRequestID_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := requestID(context.Background())
		if ids[id] {
			t.Fatalf("duplicate request ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestWithGeneratedRequestID_Distinct(t *testing.T) {
	assert := testutil.New(t)
	first := RequestIDFromContext(WithGeneratedRequestID(context.Background()))
	second := RequestIDFromContext(WithGeneratedRequestID(context.Background()))
	assert.NotEqual(first, second)
}

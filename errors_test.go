package oaikit

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/blue-context/oaikit/internal/testutil"
	"github.com/blue-context/oaikit/types"
)

func TestParseRemoteError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		header    http.Header
		body      string
		check     func(t *testing.T, err error)
		wantMsg   string
		wantCode  string
		retryable bool
	}{
		{
			name:   "authentication",
			status: 401,
			body:   `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			check: func(t *testing.T, err error) {
				var target *AuthenticationError
				if !errors.As(err, &target) {
					t.Fatalf("expected AuthenticationError, got %T", err)
				}
			},
			wantMsg:  "Incorrect API key provided",
			wantCode: "invalid_api_key",
		},
		{
			name:   "permission",
			status: 403,
			body:   `{"error":{"message":"forbidden"}}`,
			check: func(t *testing.T, err error) {
				var target *PermissionError
				if !errors.As(err, &target) {
					t.Fatalf("expected PermissionError, got %T", err)
				}
			},
			wantMsg: "forbidden",
		},
		{
			name:   "not found",
			status: 404,
			body:   `{"error":{"message":"No such file: file-x","param":"file_id"}}`,
			check: func(t *testing.T, err error) {
				var target *NotFoundError
				if !errors.As(err, &target) {
					t.Fatalf("expected NotFoundError, got %T", err)
				}
				if target.Param != "file_id" {
					t.Errorf("Param = %q", target.Param)
				}
			},
			wantMsg: "No such file: file-x",
		},
		{
			name:   "rate limit with retry-after",
			status: 429,
			header: http.Header{"Retry-After": []string{"7"}},
			body:   `{"error":{"message":"Rate limit reached","code":"rate_limit_exceeded"}}`,
			check: func(t *testing.T, err error) {
				var target *RateLimitError
				if !errors.As(err, &target) {
					t.Fatalf("expected RateLimitError, got %T", err)
				}
				if target.RetryAfter != 7*time.Second {
					t.Errorf("RetryAfter = %v", target.RetryAfter)
				}
			},
			wantMsg:   "Rate limit reached",
			wantCode:  "rate_limit_exceeded",
			retryable: true,
		},
		{
			name:   "rate limit with retry-after-ms",
			status: 429,
			header: http.Header{"Retry-After-Ms": []string{"250"}},
			body:   `{"error":{"message":"slow down"}}`,
			check: func(t *testing.T, err error) {
				var target *RateLimitError
				if !errors.As(err, &target) {
					t.Fatalf("expected RateLimitError, got %T", err)
				}
				if target.RetryAfter != 250*time.Millisecond {
					t.Errorf("RetryAfter = %v", target.RetryAfter)
				}
			},
			wantMsg:   "slow down",
			retryable: true,
		},
		{
			name:   "context window by code",
			status: 400,
			body:   `{"error":{"message":"This model's maximum context length is 128000 tokens.","code":"context_length_exceeded"}}`,
			check: func(t *testing.T, err error) {
				var target *ContextWindowExceededError
				if !errors.As(err, &target) {
					t.Fatalf("expected ContextWindowExceededError, got %T", err)
				}
			},
			wantMsg:  "This model's maximum context length is 128000 tokens.",
			wantCode: "context_length_exceeded",
		},
		{
			name:   "content policy",
			status: 400,
			body:   `{"error":{"message":"Your request was rejected","code":"content_policy_violation"}}`,
			check: func(t *testing.T, err error) {
				var target *ContentPolicyViolationError
				if !errors.As(err, &target) {
					t.Fatalf("expected ContentPolicyViolationError, got %T", err)
				}
			},
			wantMsg:  "Your request was rejected",
			wantCode: "content_policy_violation",
		},
		{
			name:   "plain invalid request",
			status: 400,
			body:   `{"error":{"message":"Invalid value for 'model'","type":"invalid_request_error","param":"model"}}`,
			check: func(t *testing.T, err error) {
				var target *InvalidRequestError
				if !errors.As(err, &target) {
					t.Fatalf("expected InvalidRequestError, got %T", err)
				}
				if target.Type != "invalid_request_error" {
					t.Errorf("Type = %q", target.Type)
				}
			},
			wantMsg: "Invalid value for 'model'",
		},
		{
			name:   "server error keeps status",
			status: 502,
			body:   `upstream connect error`,
			check: func(t *testing.T, err error) {
				var target *ServiceUnavailableError
				if !errors.As(err, &target) {
					t.Fatalf("expected ServiceUnavailableError, got %T", err)
				}
				if target.StatusCode != 502 {
					t.Errorf("StatusCode = %d", target.StatusCode)
				}
			},
			wantMsg:   "upstream connect error",
			retryable: true,
		},
		{
			name:    "empty body",
			status:  409,
			body:    ``,
			wantMsg: "HTTP 409 Conflict",
		},
		{
			name:    "string error payload",
			status:  418,
			body:    `{"error":"teapot"}`,
			wantMsg: "teapot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseRemoteError(tt.status, tt.header, []byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.check != nil {
				tt.check(t, err)
			}

			base, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("AsAPIError failed for %T", err)
			}
			if base.Kind != KindRemote {
				t.Errorf("Kind = %v, want remote", base.Kind)
			}
			if base.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", base.Message, tt.wantMsg)
			}
			if base.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", base.Code, tt.wantCode)
			}
			if !errors.Is(err, ErrRemote) {
				t.Error("remote error must match ErrRemote")
			}
			if errors.Is(err, ErrTransport) {
				t.Error("remote error must not match ErrTransport")
			}
			if got := isRetryable(err); got != tt.retryable {
				t.Errorf("isRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestErrorKindSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"missing field", missingField("embeddings", "input"), ErrMissingConfiguration},
		{"invalid argument", invalidArgument("embeddings", "bad encoding %q", "hex"), ErrInvalidArgument},
		{"transport", transportError("files", errors.New("connection reset")), ErrTransport},
		{"response shape", responseShapeError("files", errors.New("missing id")), ErrResponseShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.target) {
				t.Error("sentinel lost through wrapping")
			}
		})
	}
}

func TestClassify(t *testing.T) {
	assert := testutil.New(t)

	_, err := types.ParseVoice("robot")
	classified := classify("audio/speech", err)
	assert.ErrorIs(classified, ErrInvalidArgument)
	base, ok := AsAPIError(classified)
	assert.True(ok)
	assert.Equal("audio/speech", base.Endpoint)
	assert.Equal(KindInvalidArgument, base.Kind)

	var unknown *types.UnknownValueError
	assert.True(errors.As(classified, &unknown))

	shape := classify("batches", fmt.Errorf("%w: missing id", types.ErrResponseShape))
	assert.ErrorIs(shape, ErrResponseShape)

	remote := ParseRemoteError(500, nil, nil)
	assert.Equal(remote, classify("batches", remote))
	base, _ = AsAPIError(remote)
	assert.Equal("batches", base.Endpoint)

	assert.Nil(classify("x", nil))
}

func TestErrorMessage(t *testing.T) {
	err := &APIError{
		Kind:       KindRemote,
		Message:    "Rate limit reached",
		StatusCode: 429,
		Code:       "rate_limit_exceeded",
		Endpoint:   "chat/completions",
	}
	want := "remote error [chat/completions] (HTTP 429): Rate limit reached [code=rate_limit_exceeded]"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := invalidArgument("", "unsupported image extension %q", ".bmp")
	if got := plain.Error(); got != `invalid argument: unsupported image extension ".bmp"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorIsByCode(t *testing.T) {
	err := ParseRemoteError(429, nil, []byte(`{"error":{"message":"quota","code":"insufficient_quota"}}`))

	if !errors.Is(err, &APIError{Kind: KindRemote, Code: "insufficient_quota"}) {
		t.Error("expected match on kind and code")
	}
	if errors.Is(err, &APIError{Kind: KindRemote, Code: "rate_limit_exceeded"}) {
		t.Error("unexpected match on different code")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := transportError("models", cause)
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if !isRetryable(err) {
		t.Error("transport failures are retryable")
	}
}

package oaikit

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blue-context/oaikit/callback"
	"github.com/blue-context/oaikit/internal/testutil"
	"github.com/blue-context/oaikit/types"
)

// newTestClient returns a client backed by mock.
func newTestClient(t *testing.T, mock *testutil.MockHTTPClient, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithAPIKey("sk-test"), WithHTTPClient(mock)}, opts...)
	client, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

// respond returns a mock that answers every request with status and body.
func respond(status int, body string) *testutil.MockHTTPClient {
	return &testutil.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return testutil.MockResponse(status, body), nil
		},
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ClientOption
		wantErr error
	}{
		{
			name: "api key",
			opts: []ClientOption{WithAPIKey("sk-test")},
		},
		{
			name: "azure key",
			opts: []ClientOption{WithAzure("https://acme.openai.azure.com", "gpt-4o-mini", ""), WithAPIKey("az-key")},
		},
		{
			name:    "no credential",
			opts:    nil,
			wantErr: ErrMissingConfiguration,
		},
		{
			name:    "empty key",
			opts:    []ClientOption{WithAPIKey("")},
			wantErr: ErrMissingConfiguration,
		},
		{
			name:    "negative timeout",
			opts:    []ClientOption{WithAPIKey("sk-test"), WithTimeout(-time.Second)},
			wantErr: ErrInvalidArgument,
		},
		{
			name: "nil options are skipped",
			opts: []ClientOption{nil, WithAPIKey("sk-test")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewClient() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if client.Logger() == nil || client.Callbacks() == nil || client.Provider() == nil {
				t.Error("client is missing logger, callbacks or provider")
			}
			if err := client.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	assert := testutil.New(t)
	mock := respond(200, testutil.ModelListJSON)
	client := newTestClient(t, mock, WithOrganization("org-1"))

	ctx := WithRequestID(context.Background(), "req-42")
	_, err := client.ListModels(ctx)
	assert.NoError(err)

	req := mock.LastRequest()
	assert.Equal("https://api.openai.com/v1/models", req.URL.String())
	assert.Equal("Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal("org-1", req.Header.Get("OpenAI-Organization"))
	assert.Equal("req-42", req.Header.Get("X-Client-Request-Id"))
	assert.Equal("application/json", req.Header.Get("Accept"))
}

func TestRemoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: 401,
			check: func(t *testing.T, err error) {
				var target *AuthenticationError
				if !errors.As(err, &target) {
					t.Fatalf("expected AuthenticationError, got %T", err)
				}
				if target.Endpoint != modelsEndpoint {
					t.Errorf("Endpoint = %q, want %q", target.Endpoint, modelsEndpoint)
				}
			},
		},
		{
			name:   "not found",
			status: 404,
			check: func(t *testing.T, err error) {
				var target *NotFoundError
				if !errors.As(err, &target) {
					t.Fatalf("expected NotFoundError, got %T", err)
				}
			},
		},
		{
			name:   "server error",
			status: 503,
			check: func(t *testing.T, err error) {
				var target *ServiceUnavailableError
				if !errors.As(err, &target) {
					t.Fatalf("expected ServiceUnavailableError, got %T", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &testutil.MockHTTPClient{
				DoFunc: func(req *http.Request) (*http.Response, error) {
					return testutil.MockErrorResponse(tt.status, "boom", "code_x"), nil
				},
			}
			client := newTestClient(t, mock)
			_, err := client.ListModels(context.Background())
			if !errors.Is(err, ErrRemote) {
				t.Fatalf("error = %v, want remote error", err)
			}
			e, ok := AsAPIError(err)
			if !ok {
				t.Fatal("AsAPIError() = false")
			}
			if e.StatusCode != tt.status || e.Message != "boom" || e.Code != "code_x" {
				t.Errorf("APIError = %+v", e)
			}
			tt.check(t, err)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	mock := &testutil.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}
	client := newTestClient(t, mock)

	_, err := client.RetrieveModel(context.Background(), "gpt-4o-mini")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want transport failure", err)
	}
}

func TestResponseShapeMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "not json", body: "<html>"},
		{name: "missing required id", body: `{"object":"model"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respond(200, tt.body))
			_, err := client.RetrieveModel(context.Background(), "gpt-4o-mini")
			if !errors.Is(err, ErrResponseShape) {
				t.Fatalf("error = %v, want response shape mismatch", err)
			}
		})
	}
}

func TestRetryLogic(t *testing.T) {
	tests := []struct {
		name      string
		retries   int
		failures  int
		status    int
		wantCalls int32
		wantErr   bool
	}{
		{name: "retries disabled by default", retries: 0, failures: 1, status: 500, wantCalls: 1, wantErr: true},
		{name: "server error then success", retries: 2, failures: 1, status: 500, wantCalls: 2},
		{name: "rate limit then success", retries: 2, failures: 2, status: 429, wantCalls: 3},
		{name: "retries exhausted", retries: 1, failures: 5, status: 503, wantCalls: 2, wantErr: true},
		{name: "client error is not retried", retries: 3, failures: 1, status: 400, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			mock := &testutil.MockHTTPClient{
				DoFunc: func(req *http.Request) (*http.Response, error) {
					if int(calls.Add(1)) <= tt.failures {
						return testutil.MockErrorResponse(tt.status, "try again", ""), nil
					}
					return testutil.MockResponse(200, testutil.ModelListJSON), nil
				},
			}
			opts := []ClientOption{}
			if tt.retries > 0 {
				opts = append(opts, WithRetries(tt.retries, time.Millisecond, 1))
			}
			client := newTestClient(t, mock, opts...)

			_, err := client.ListModels(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	mock := &testutil.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	}
	client := newTestClient(t, mock)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.ListModels(ctx)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("error = %v, want transport failure", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	mock := &testutil.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			if _, ok := req.Context().Deadline(); !ok {
				t.Error("request context has no deadline")
			}
			return testutil.MockResponse(200, testutil.ModelListJSON), nil
		},
	}
	client := newTestClient(t, mock, WithTimeout(time.Minute))

	if _, err := client.ListModels(context.Background()); err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
}

func TestCallbacks(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		assert := testutil.New(t)
		var before, success atomic.Int32
		var got *callback.SuccessEvent
		client := newTestClient(t, respond(200, testutil.ChatCompletionJSON),
			WithBeforeRequestCallback(func(ctx context.Context, e *callback.BeforeRequestEvent) error {
				before.Add(1)
				return nil
			}),
			WithSuccessCallback(func(ctx context.Context, e *callback.SuccessEvent) {
				success.Add(1)
				got = e
			}),
		)

		_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
			Model:    types.GPT4oMini,
			Messages: []Message{NewTextMessage(types.RoleUser, "hi")},
		})
		assert.NoError(err)
		assert.Equal(int32(1), before.Load())
		assert.Equal(int32(1), success.Load())
		assert.Equal(chatEndpoint, got.Endpoint)
		assert.Equal("gpt-4o-mini", got.Model)
		assert.Equal(200, got.StatusCode)
		assert.True(got.Tokens > 0)
	})

	t.Run("before request aborts", func(t *testing.T) {
		mock := respond(200, testutil.ModelListJSON)
		client := newTestClient(t, mock,
			WithBeforeRequestCallback(func(ctx context.Context, e *callback.BeforeRequestEvent) error {
				return errors.New("quota exhausted")
			}),
		)

		_, err := client.ListModels(context.Background())
		if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
			t.Fatalf("error = %v, want abort", err)
		}
		if len(mock.RequestsMade) != 0 {
			t.Errorf("requests made = %d, want 0", len(mock.RequestsMade))
		}
	})

	t.Run("failure", func(t *testing.T) {
		var got *callback.FailureEvent
		client := newTestClient(t, respond(500, `{"error":{"message":"down"}}`),
			WithFailureCallback(func(ctx context.Context, e *callback.FailureEvent) {
				got = e
			}),
		)

		_, err := client.ListModels(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		if got == nil {
			t.Fatal("failure callback not invoked")
		}
		if got.StatusCode != 500 || got.Error == nil {
			t.Errorf("FailureEvent = %+v", got)
		}
	})
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		segments []string
		want     string
	}{
		{[]string{"batches", "batch_123", "cancel"}, "batches/batch_123/cancel"},
		{[]string{"models", "ft:gpt-4o-mini:acme::abc"}, "models/ft:gpt-4o-mini:acme::abc"},
		{[]string{"files", "a/b"}, "files/a%2Fb"},
	}

	for _, tt := range tests {
		if got := joinPath(tt.segments...); got != tt.want {
			t.Errorf("joinPath(%v) = %q, want %q", tt.segments, got, tt.want)
		}
	}
}

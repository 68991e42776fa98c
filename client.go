package oaikit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mudler/xlog"
	"github.com/tidwall/gjson"

	"github.com/blue-context/oaikit/callback"
	"github.com/blue-context/oaikit/internal/multipart"
	"github.com/blue-context/oaikit/provider"
)

// Client is the entry point for every HTTP endpoint of the API.
//
// Thread Safety: Client is safe for concurrent use from multiple goroutines.
// Its configuration and credential are fixed at construction.
//
// Example:
//
//	client, err := oaikit.NewClient(
//	    oaikit.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
type Client struct {
	config    *ClientConfig
	provider  provider.Provider
	http      HTTPClient
	logger    *xlog.Logger
	callbacks *callback.Registry
	randMu    sync.Mutex
	randSrc   *rand.Rand
}

// NewClient creates a new client.
//
// A credential is required, through WithAPIKey, WithAzureToken or a
// pre-built WithProvider. The error wraps ErrMissingConfiguration when it is
// absent.
//
// Example:
//
//	client, err := oaikit.NewClient(
//	    oaikit.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    oaikit.WithTimeout(30 * time.Second),
//	    oaikit.WithRetries(3, time.Second, 2.0),
//	)
func NewClient(opts ...ClientOption) (*Client, error) {
	config := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(config); err != nil {
			return nil, classify("", fmt.Errorf("failed to apply option: %w", err))
		}
	}

	if err := config.Validate(); err != nil {
		return nil, classify("", fmt.Errorf("invalid configuration: %w", err))
	}

	p, err := config.buildProvider()
	if err != nil {
		return nil, classify("", err)
	}

	c := &Client{
		config:    config,
		provider:  p,
		http:      config.HTTPClient,
		logger:    config.buildLogger(),
		callbacks: config.registry(),
		randSrc:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.logger.Debug("client created", "provider", p.Name(), "timeout", config.Timeout, "max_retries", config.MaxRetries)
	return c, nil
}

// Provider returns the provider used for URLs and authentication.
// The realtime package takes it to open sessions with the same credential.
func (c *Client) Provider() provider.Provider {
	return c.provider
}

// Logger returns the client's logger.
func (c *Client) Logger() *xlog.Logger {
	return c.logger
}

// Callbacks returns the client's callback registry.
func (c *Client) Callbacks() *callback.Registry {
	return c.callbacks
}

// Close releases idle connections of the default HTTP client.
//
// After calling Close, the client should not be used.
func (c *Client) Close() error {
	if hc, ok := c.http.(*http.Client); ok {
		hc.CloseIdleConnections()
	}
	return nil
}

// apiCall describes one HTTP exchange with the API.
type apiCall struct {
	method   string
	path     string
	query    url.Values
	model    string
	request  any
	body     []byte
	ctype    string
	accept   string
	endpoint string
}

func (a *apiCall) name() string {
	if a.endpoint != "" {
		return a.endpoint
	}
	return a.path
}

// validator is implemented by response types with required fields.
type validator interface {
	Validate() error
}

// doJSON sends in (when non-nil) as a JSON body and decodes the response
// into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, model string, in, out any) error {
	call := &apiCall{method: method, path: path, query: query, model: model, request: in, accept: "application/json"}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return classify(path, err)
		}
		call.body = body
		call.ctype = "application/json"
	}

	data, _, err := c.execute(ctx, call)
	if err != nil {
		return err
	}
	return decodeResponse(path, data, out)
}

// doMultipart sends a multipart/form-data body and decodes a JSON response
// into out. When out is a *string the raw body is stored instead.
func (c *Client) doMultipart(ctx context.Context, path, model string, form *multipart.Form, request, out any) error {
	body, ctype, err := form.Encode()
	if err != nil {
		return newError(KindInvalidArgument, path, err, "%v", err)
	}
	call := &apiCall{method: http.MethodPost, path: path, model: model, request: request, body: body, ctype: ctype}

	data, _, err := c.execute(ctx, call)
	if err != nil {
		return err
	}
	if s, ok := out.(*string); ok {
		*s = string(data)
		return nil
	}
	return decodeResponse(path, data, out)
}

// doRaw sends in as JSON (when non-nil) and returns the raw response body
// with its Content-Type.
func (c *Client) doRaw(ctx context.Context, method, path, model string, in any) ([]byte, string, error) {
	call := &apiCall{method: method, path: path, model: model, request: in}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return nil, "", classify(path, err)
		}
		call.body = body
		call.ctype = "application/json"
	}
	data, header, err := c.execute(ctx, call)
	if err != nil {
		return nil, "", err
	}
	return data, header.Get("Content-Type"), nil
}

func decodeResponse(endpoint string, data []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return responseShapeError(endpoint, errors.New("empty response body"))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return responseShapeError(endpoint, err)
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return responseShapeError(endpoint, err)
		}
	}
	return nil
}

// execute runs the call through callbacks and the retry loop and returns
// the body of the successful response.
func (c *Client) execute(ctx context.Context, call *apiCall) ([]byte, http.Header, error) {
	id := requestID(ctx)
	start := time.Now()
	endpoint := call.name()

	if err := c.callbacks.ExecuteBeforeRequest(ctx, &callback.BeforeRequestEvent{
		RequestID: id,
		Endpoint:  endpoint,
		Method:    call.method,
		Model:     call.model,
		Request:   call.request,
		StartTime: start,
	}); err != nil {
		return nil, nil, newError(KindInvalidArgument, endpoint, err, "request aborted by callback: %v", err)
	}

	var (
		data   []byte
		header http.Header
		status int
	)
	err := c.withRetry(ctx, func() error {
		var err error
		data, header, status, err = c.roundTrip(ctx, id, call)
		return err
	})

	end := time.Now()
	if err != nil {
		err = classify(endpoint, err)
		c.logger.Debug("request failed", "request_id", id, "endpoint", endpoint, "error", err, "duration", end.Sub(start))
		if status == 0 {
			if e, ok := AsAPIError(err); ok {
				status = e.StatusCode
			}
		}
		c.callbacks.ExecuteFailure(context.WithoutCancel(ctx), &callback.FailureEvent{
			RequestID:  id,
			Endpoint:   endpoint,
			Method:     call.method,
			Model:      call.model,
			StatusCode: status,
			Request:    call.request,
			Error:      err,
			StartTime:  start,
			EndTime:    end,
			Duration:   end.Sub(start),
		})
		return nil, nil, err
	}

	var response any
	if gjson.ValidBytes(data) {
		response = json.RawMessage(data)
	}
	c.callbacks.ExecuteSuccess(ctx, &callback.SuccessEvent{
		RequestID:  id,
		Endpoint:   endpoint,
		Method:     call.method,
		Model:      call.model,
		StatusCode: status,
		Request:    call.request,
		Response:   response,
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start),
		Tokens:     usageTokens(data),
	})
	return data, header, nil
}

// usageTokens extracts usage.total_tokens from a JSON body, if any.
func usageTokens(data []byte) int {
	if !gjson.ValidBytes(data) {
		return 0
	}
	return int(gjson.GetBytes(data, "usage.total_tokens").Int())
}

// roundTrip performs a single HTTP exchange.
func (c *Client) roundTrip(ctx context.Context, id string, call *apiCall) ([]byte, http.Header, int, error) {
	endpoint := call.name()
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	var body io.Reader
	if call.body != nil {
		body = bytes.NewReader(call.body)
	}
	u := c.provider.URL(call.path, call.query)
	req, err := http.NewRequestWithContext(ctx, call.method, u, body)
	if err != nil {
		return nil, nil, 0, newError(KindInvalidArgument, endpoint, err, "failed to create request: %v", err)
	}
	if call.ctype != "" {
		req.Header.Set("Content-Type", call.ctype)
	}
	if call.accept != "" {
		req.Header.Set("Accept", call.accept)
	}
	req.Header.Set("X-Client-Request-Id", id)
	c.provider.Authorize(req.Header)

	c.logger.Debug("sending request", "request_id", id, "method", call.method, "path", call.path, "bytes", len(call.body))
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, 0, transportError(endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, resp.StatusCode, transportError(endpoint, fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug("received response", "request_id", id, "path", call.path, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := ParseRemoteError(resp.StatusCode, resp.Header, data)
		if e, ok := AsAPIError(remote); ok {
			e.Endpoint = endpoint
		}
		return nil, nil, resp.StatusCode, remote
	}
	return data, resp.Header, resp.StatusCode, nil
}

// withRetry executes a function with retry logic
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error

	maxRetries := c.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Check context cancellation before each attempt
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return transportError("", err)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == maxRetries {
			return err
		}

		delay := c.calculateDelay(attempt)
		var rl *RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > delay {
			delay = rl.RetryAfter
		}
		c.logger.Warn("retrying request", "attempt", attempt+1, "max_retries", maxRetries, "delay", delay, "error", err)

		// Wait with context cancellation support
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return lastErr
		}
	}

	return lastErr
}

// calculateDelay calculates the retry delay with exponential backoff
func (c *Client) calculateDelay(attempt int) time.Duration {
	delay := float64(c.config.RetryDelay) * math.Pow(c.config.RetryMultiplier, float64(attempt))

	// Add jitter (±10%) with thread-safe random source
	c.randMu.Lock()
	jitter := c.randSrc.Float64()*0.2 - 0.1
	c.randMu.Unlock()
	delay = delay * (1.0 + jitter)

	// Cap at 60 seconds
	if delay > 60*float64(time.Second) {
		delay = 60 * float64(time.Second)
	}

	return time.Duration(delay)
}

// isRetryable checks if an error is retryable
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	type retryable interface {
		IsRetryable() bool
	}
	var retryableErr retryable
	if errors.As(err, &retryableErr) {
		return retryableErr.IsRetryable()
	}
	return false
}

// joinPath joins path segments, escaping each one.
//
//	joinPath("batches", id, "cancel") // batches/batch_123/cancel
func joinPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	return strings.Join(escaped, "/")
}

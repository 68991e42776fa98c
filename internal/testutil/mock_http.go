package testutil

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockHTTPClient is a scripted HTTP client for testing.
//
// Every request is recorded together with its body, so tests can inspect
// the exact payload an endpoint adapter produced. Responses come from
// DoFunc when set, otherwise from the Responses queue, otherwise a 200
// with an empty JSON object.
//
// Example:
//
//	mock := &testutil.MockHTTPClient{
//	    DoFunc: func(req *http.Request) (*http.Response, error) {
//	        return testutil.MockResponse(200, testutil.ChatCompletionJSON), nil
//	    },
//	}
//	client, _ := oaikit.NewClient(oaikit.WithAPIKey("sk-test"), oaikit.WithHTTPClient(mock))
type MockHTTPClient struct {
	// DoFunc is the function to call when Do is invoked.
	DoFunc func(req *http.Request) (*http.Response, error)

	// Responses are returned in order when DoFunc is nil.
	Responses []*http.Response

	// RequestsMade tracks all requests made to this client.
	RequestsMade []*http.Request

	// Bodies holds the request body of each entry in RequestsMade.
	Bodies [][]byte

	mu sync.Mutex
}

// Do records the request and returns the scripted response.
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	m.mu.Lock()
	m.RequestsMade = append(m.RequestsMade, req)
	m.Bodies = append(m.Bodies, body)
	var next *http.Response
	if m.DoFunc == nil && len(m.Responses) > 0 {
		next = m.Responses[0]
		m.Responses = m.Responses[1:]
	}
	m.mu.Unlock()

	if m.DoFunc != nil {
		return m.DoFunc(req)
	}
	if next != nil {
		return next, nil
	}
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewReader([]byte("{}"))),
		Header:     make(http.Header),
	}, nil
}

// RoundTrip implements http.RoundTripper so the mock can back an http.Client.
func (m *MockHTTPClient) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Do(req)
}

// LastRequest returns the most recent request, or nil.
func (m *MockHTTPClient) LastRequest() *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.RequestsMade) == 0 {
		return nil
	}
	return m.RequestsMade[len(m.RequestsMade)-1]
}

// LastBody returns the body of the most recent request as a string.
func (m *MockHTTPClient) LastBody() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Bodies) == 0 {
		return ""
	}
	return string(m.Bodies[len(m.Bodies)-1])
}

// MockResponse is a helper to create mock HTTP responses.
//
// Example:
//
//	resp := testutil.MockResponse(200, `{"result": "ok"}`)
func MockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// MockErrorResponse creates a mock error response in the vendor error shape.
//
// Example:
//
//	resp := testutil.MockErrorResponse(401, "Incorrect API key provided", "invalid_api_key")
func MockErrorResponse(statusCode int, message, code string) *http.Response {
	return MockResponse(statusCode, `{"error":{"message":"`+message+`","type":"invalid_request_error","param":null,"code":"`+code+`"}}`)
}

// MockBytesResponse returns a response carrying raw bytes with the given content type.
func MockBytesResponse(statusCode int, contentType string, body []byte) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{contentType}},
	}
}

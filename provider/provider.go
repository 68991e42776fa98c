// Package provider defines how the client reaches a deployment of the API:
// URL construction, authentication headers and the realtime endpoint.
//
// Two implementations ship with the module: provider/openai for the public
// API and provider/azure for Azure OpenAI deployments. Endpoint adapters in
// the root package never build URLs or auth headers themselves.
package provider

import (
	"net/http"
	"net/url"
	"strings"
)

// Provider locates and authenticates API endpoints.
//
// Thread Safety: Implementations must be safe for concurrent use and
// immutable after construction; the credential is read once.
//
// Example:
//
//	p, err := openai.NewProvider(openai.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p.URL("chat/completions", nil) // https://api.openai.com/v1/chat/completions
type Provider interface {
	// Name returns the provider name ("openai", "azure").
	Name() string

	// URL returns the absolute URL for an API path such as
	// "chat/completions" or "batches/batch_123/cancel". Query values are
	// merged with any query the provider itself requires.
	URL(path string, query url.Values) string

	// Authorize sets authentication headers on h.
	Authorize(h http.Header)

	// RealtimeURL returns the WebSocket URL of the realtime endpoint.
	RealtimeURL(model string) string
}

// JoinURL appends path to base and merges query into any query base already
// carries. Slashes at the seam are normalized.
func JoinURL(base, path string, query url.Values) string {
	rawQuery := ""
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base, rawQuery = base[:i], base[i+1:]
	}
	full := strings.TrimSuffix(base, "/")
	if p := strings.TrimPrefix(path, "/"); p != "" {
		full += "/" + p
	}

	merged, err := url.ParseQuery(rawQuery)
	if err != nil {
		merged = url.Values{}
	}
	for k, vs := range query {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	if len(merged) == 0 {
		return full
	}
	return full + "?" + merged.Encode()
}

// WebSocketScheme rewrites an http(s) URL to ws(s). Other schemes are kept.
func WebSocketScheme(u string) string {
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

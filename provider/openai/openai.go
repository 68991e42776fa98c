// Package openai implements provider.Provider for the public OpenAI API.
//
// Requests go to https://api.openai.com/v1 (or a compatible base URL) with
// an "Authorization: Bearer" header. Organization and project ids, when
// set, are sent as OpenAI-Organization and OpenAI-Project.
//
// Basic usage:
//
//	p, err := openai.NewProvider(
//	    openai.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := oaikit.NewClient(oaikit.WithProvider(p))
package openai

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/blue-context/oaikit/provider"
	"github.com/blue-context/oaikit/types"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider implements provider.Provider for OpenAI.
//
// Thread Safety: Provider is immutable after NewProvider returns and is safe
// for concurrent use.
type Provider struct {
	apiKey       string
	apiBase      string
	organization string
	project      string
}

// Compile-time interface check
var _ provider.Provider = (*Provider)(nil)

// Option is a functional option for configuring the OpenAI provider.
type Option func(*Provider)

// NewProvider creates a new OpenAI provider with the given options.
//
// The provider requires an API key to be set via WithAPIKey.
//
// Example:
//
//	p, err := openai.NewProvider(
//	    openai.WithAPIKey("sk-..."),
//	    openai.WithAPIBase("http://localhost:8080/v1"),
//	)
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{apiBase: DefaultBaseURL}

	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", types.ErrMissingConfiguration)
	}
	if p.apiBase == "" {
		p.apiBase = DefaultBaseURL
	}
	if _, err := url.Parse(p.apiBase); err != nil {
		return nil, fmt.Errorf("%w: invalid API base %q: %v", types.ErrInvalidArgument, p.apiBase, err)
	}

	return p, nil
}

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(p *Provider) {
		p.apiKey = key
	}
}

// WithAPIBase sets a custom API base URL, e.g. an OpenAI-compatible server
// or a proxy. The default is DefaultBaseURL.
func WithAPIBase(base string) Option {
	return func(p *Provider) {
		p.apiBase = base
	}
}

// WithOrganization sets the OpenAI-Organization header.
func WithOrganization(org string) Option {
	return func(p *Provider) {
		p.organization = org
	}
}

// WithProject sets the OpenAI-Project header.
func WithProject(project string) Option {
	return func(p *Provider) {
		p.project = project
	}
}

// Name returns "openai".
func (p *Provider) Name() string {
	return "openai"
}

// BaseURL returns the configured API root.
func (p *Provider) BaseURL() string {
	return p.apiBase
}

// URL returns {base}/{path}?{query}.
func (p *Provider) URL(path string, query url.Values) string {
	return provider.JoinURL(p.apiBase, path, query)
}

// Authorize sets the bearer token and optional organization and project headers.
func (p *Provider) Authorize(h http.Header) {
	h.Set("Authorization", "Bearer "+p.apiKey)
	if p.organization != "" {
		h.Set("OpenAI-Organization", p.organization)
	}
	if p.project != "" {
		h.Set("OpenAI-Project", p.project)
	}
}

// RealtimeURL returns wss://{host}/v1/realtime?model={model}.
func (p *Provider) RealtimeURL(model string) string {
	return provider.WebSocketScheme(p.URL("realtime", url.Values{"model": {model}}))
}

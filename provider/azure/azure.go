// Package azure implements provider.Provider for Azure OpenAI.
//
// Azure OpenAI differs from the public API in URL structure and authentication:
//   - URL: {endpoint}/openai/deployments/{deployment}/{path}?api-version={version}
//   - Auth: api-key header, or Authorization: Bearer with an Entra ID token
//   - Deployment names stand in for model names
//
// The endpoint is either given directly or derived from a resource name as
// https://{resource}.openai.azure.com. WithBaseURL switches to static mode,
// where paths are appended to a caller-supplied URL verbatim.
//
// Basic usage:
//
//	p, err := azure.NewProvider(
//	    azure.WithAPIKey(os.Getenv("AZURE_OPENAI_API_KEY")),
//	    azure.WithEndpoint("https://my-resource.openai.azure.com"),
//	    azure.WithDeployment("gpt-4o"),
//	)
package azure

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/blue-context/oaikit/provider"
	"github.com/blue-context/oaikit/types"
)

// DefaultAPIVersion is sent when WithAPIVersion is not used.
const DefaultAPIVersion = "2024-08-01-preview"

// Provider implements provider.Provider for Azure OpenAI.
//
// Thread Safety: Provider is immutable after NewProvider returns and is safe
// for concurrent use.
type Provider struct {
	credential   string
	entraID      bool
	endpoint     string
	resourceName string
	deployment   string
	apiVersion   string
	baseURL      string
}

// Compile-time interface check
var _ provider.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Azure OpenAI provider.
type Option func(*Provider)

// NewProvider creates a new Azure OpenAI provider with the given options.
//
// A credential (WithAPIKey or WithEntraToken) is always required. In
// deployment mode an endpoint or resource name and a deployment are required
// too; in static mode (WithBaseURL) only the base URL is.
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{apiVersion: DefaultAPIVersion}

	for _, opt := range opts {
		opt(p)
	}

	if p.credential == "" {
		return nil, fmt.Errorf("%w: Azure API key or Entra ID token is required", types.ErrMissingConfiguration)
	}

	if p.baseURL != "" {
		return p, nil
	}

	if p.endpoint == "" {
		if p.resourceName == "" {
			return nil, fmt.Errorf("%w: Azure endpoint or resource name is required", types.ErrMissingConfiguration)
		}
		p.endpoint = "https://" + p.resourceName + ".openai.azure.com"
	}
	// Remove trailing slash from endpoint for consistent URL construction
	p.endpoint = strings.TrimSuffix(p.endpoint, "/")

	if p.deployment == "" {
		return nil, fmt.Errorf("%w: Azure deployment name is required", types.ErrMissingConfiguration)
	}
	if p.apiVersion == "" {
		p.apiVersion = DefaultAPIVersion
	}

	return p, nil
}

// WithAPIKey authenticates with the api-key header.
func WithAPIKey(key string) Option {
	return func(p *Provider) {
		p.credential = key
		p.entraID = false
	}
}

// WithEntraToken authenticates with an Entra ID bearer token.
func WithEntraToken(token string) Option {
	return func(p *Provider) {
		p.credential = token
		p.entraID = true
	}
}

// WithEndpoint sets the resource endpoint, e.g. https://my-resource.openai.azure.com.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// WithResourceName derives the endpoint from the Azure resource name.
func WithResourceName(name string) Option {
	return func(p *Provider) {
		p.resourceName = name
	}
}

// WithDeployment sets the deployment name used in place of a model.
func WithDeployment(deployment string) Option {
	return func(p *Provider) {
		p.deployment = deployment
	}
}

// WithAPIVersion sets the api-version query parameter. The default is DefaultAPIVersion.
func WithAPIVersion(version string) Option {
	return func(p *Provider) {
		p.apiVersion = version
	}
}

// WithBaseURL switches to static mode: every path is appended to base and
// any query base carries (e.g. api-version) is preserved.
//
// Example:
//
//	azure.WithBaseURL("https://r.openai.azure.com/openai/deployments/gpt-4o?api-version=2024-08-01-preview")
func WithBaseURL(base string) Option {
	return func(p *Provider) {
		p.baseURL = base
	}
}

// Name returns "azure".
func (p *Provider) Name() string {
	return "azure"
}

// Deployment returns the configured deployment name.
func (p *Provider) Deployment() string {
	return p.deployment
}

// URL returns the deployment-scoped URL for path.
func (p *Provider) URL(path string, query url.Values) string {
	if p.baseURL != "" {
		return provider.JoinURL(p.baseURL, path, query)
	}
	base := p.endpoint + "/openai/deployments/" + url.PathEscape(p.deployment) + "?api-version=" + url.QueryEscape(p.apiVersion)
	return provider.JoinURL(base, path, query)
}

// Authorize sets api-key, or Authorization: Bearer for Entra ID tokens.
func (p *Provider) Authorize(h http.Header) {
	if p.entraID {
		h.Set("Authorization", "Bearer "+p.credential)
		return
	}
	h.Set("api-key", p.credential)
}

// RealtimeURL returns wss://{endpoint}/openai/realtime?api-version=...&deployment=...
// In static mode the base URL is used as is with its scheme rewritten.
func (p *Provider) RealtimeURL(model string) string {
	if p.baseURL != "" {
		return provider.WebSocketScheme(p.baseURL)
	}
	q := url.Values{
		"api-version": {p.apiVersion},
		"deployment":  {p.deployment},
	}
	return provider.WebSocketScheme(provider.JoinURL(p.endpoint, "openai/realtime", q))
}

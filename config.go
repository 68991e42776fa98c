package oaikit

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mudler/xlog"
	"gopkg.in/yaml.v3"

	"github.com/blue-context/oaikit/callback"
	"github.com/blue-context/oaikit/provider"
	"github.com/blue-context/oaikit/provider/azure"
	"github.com/blue-context/oaikit/provider/openai"
)

// HTTPClient defines the interface for HTTP clients.
// This allows injection of custom clients or mocks for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds all client configuration.
type ClientConfig struct {
	// APIKey is the OpenAI credential (ignored when Provider is set).
	APIKey string

	// BaseURL overrides the OpenAI API root.
	BaseURL string

	// Organization and Project are optional OpenAI account scopes.
	Organization string
	Project      string

	// Azure holds Azure OpenAI settings; a non-nil value selects Azure.
	Azure *AzureConfig

	// Provider, when set, is used as-is and the fields above are ignored.
	Provider provider.Provider

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts. Zero disables retries.
	MaxRetries int

	// RetryDelay is the initial delay between retries
	RetryDelay time.Duration

	// RetryMultiplier is the multiplier for exponential backoff
	RetryMultiplier float64

	// Debug switches the default logger to debug level
	Debug bool

	// Logger receives structured log lines. Nil selects a default text logger.
	Logger *xlog.Logger

	// HTTPClient is the HTTP client to use for requests (injectable for testing)
	HTTPClient HTTPClient

	// Callbacks is the callback registry for request lifecycle hooks
	Callbacks *callback.Registry
}

// AzureConfig selects an Azure OpenAI deployment.
type AzureConfig struct {
	Endpoint     string `yaml:"endpoint"`
	ResourceName string `yaml:"resource_name"`
	Deployment   string `yaml:"deployment"`
	APIVersion   string `yaml:"api_version"`
	APIKey       string `yaml:"api_key"`
	Token        string `yaml:"token"`
}

// ClientOption is a functional option for configuring the client.
type ClientOption func(*ClientConfig) error

// defaultConfig returns default configuration.
func defaultConfig() *ClientConfig {
	return &ClientConfig{
		RetryDelay:      500 * time.Millisecond,
		RetryMultiplier: 2.0,
		HTTPClient:      &http.Client{},
	}
}

// WithAPIKey sets the API key.
//
// Returns an error if key is empty.
//
// Example:
//
//	client, err := oaikit.NewClient(
//	    oaikit.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
func WithAPIKey(key string) ClientOption {
	return func(c *ClientConfig) error {
		if key == "" {
			return fmt.Errorf("%w: API key is required", ErrMissingConfiguration)
		}
		c.APIKey = key
		return nil
	}
}

// WithBaseURL sets a custom API root such as a proxy or a compatible server.
//
// Example:
//
//	oaikit.WithBaseURL("http://localhost:8080/v1")
func WithBaseURL(base string) ClientOption {
	return func(c *ClientConfig) error {
		if base == "" {
			return fmt.Errorf("%w: base URL is required", ErrInvalidArgument)
		}
		c.BaseURL = base
		return nil
	}
}

// WithOrganization sets the OpenAI-Organization header.
func WithOrganization(org string) ClientOption {
	return func(c *ClientConfig) error {
		c.Organization = org
		return nil
	}
}

// WithProject sets the OpenAI-Project header.
func WithProject(project string) ClientOption {
	return func(c *ClientConfig) error {
		c.Project = project
		return nil
	}
}

// WithAzure targets an Azure OpenAI deployment. The credential is the value
// given to WithAPIKey unless WithAzureToken supplies an Entra ID token.
// An empty apiVersion selects azure.DefaultAPIVersion.
//
// Example:
//
//	client, err := oaikit.NewClient(
//	    oaikit.WithAPIKey(os.Getenv("AZURE_OPENAI_API_KEY")),
//	    oaikit.WithAzure("https://my-resource.openai.azure.com", "gpt-4o-mini", ""),
//	)
func WithAzure(endpoint, deployment, apiVersion string) ClientOption {
	return func(c *ClientConfig) error {
		if endpoint == "" || deployment == "" {
			return fmt.Errorf("%w: Azure endpoint and deployment are required", ErrMissingConfiguration)
		}
		if c.Azure == nil {
			c.Azure = &AzureConfig{}
		}
		c.Azure.Endpoint = endpoint
		c.Azure.Deployment = deployment
		c.Azure.APIVersion = apiVersion
		return nil
	}
}

// WithAzureToken authenticates Azure requests with an Entra ID bearer token
// instead of an api-key.
func WithAzureToken(token string) ClientOption {
	return func(c *ClientConfig) error {
		if token == "" {
			return fmt.Errorf("%w: Azure token is required", ErrMissingConfiguration)
		}
		if c.Azure == nil {
			c.Azure = &AzureConfig{}
		}
		c.Azure.Token = token
		return nil
	}
}

// WithProvider uses a pre-built provider for URLs and authentication.
//
// Example:
//
//	p, _ := azure.NewProvider(azure.WithResourceName("acme"), azure.WithDeployment("gpt-4o"), azure.WithAPIKey(key))
//	client, err := oaikit.NewClient(oaikit.WithProvider(p))
func WithProvider(p provider.Provider) ClientOption {
	return func(c *ClientConfig) error {
		if p == nil {
			return fmt.Errorf("%w: provider cannot be nil", ErrInvalidArgument)
		}
		c.Provider = p
		return nil
	}
}

// WithTimeout bounds every request. Zero disables the bound.
//
// Returns an error if timeout is negative.
//
// Example:
//
//	oaikit.WithTimeout(30 * time.Second)
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) error {
		if timeout < 0 {
			return fmt.Errorf("%w: timeout must be non-negative, got %v", ErrInvalidArgument, timeout)
		}
		c.Timeout = timeout
		return nil
	}
}

// WithRetries enables retries of retryable failures (rate limits, 5xx,
// transport errors) with exponential backoff. Retries are off by default.
//
// Parameters:
//   - maxRetries: Maximum number of retry attempts (must be non-negative)
//   - initialDelay: Initial delay between retries (must be non-negative)
//   - multiplier: Multiplier for exponential backoff (must be positive)
//
// Example:
//
//	oaikit.WithRetries(3, time.Second, 2)
func WithRetries(maxRetries int, initialDelay time.Duration, multiplier float64) ClientOption {
	return func(c *ClientConfig) error {
		if maxRetries < 0 {
			return fmt.Errorf("%w: maxRetries must be non-negative, got %d", ErrInvalidArgument, maxRetries)
		}
		if initialDelay < 0 {
			return fmt.Errorf("%w: initialDelay must be non-negative, got %v", ErrInvalidArgument, initialDelay)
		}
		if multiplier <= 0 {
			return fmt.Errorf("%w: multiplier must be positive, got %f", ErrInvalidArgument, multiplier)
		}
		c.MaxRetries = maxRetries
		c.RetryDelay = initialDelay
		c.RetryMultiplier = multiplier
		return nil
	}
}

// WithDebug enables or disables debug logging on the default logger.
func WithDebug(debug bool) ClientOption {
	return func(c *ClientConfig) error {
		c.Debug = debug
		return nil
	}
}

// WithLogger sets the logger used by the client.
func WithLogger(logger *xlog.Logger) ClientOption {
	return func(c *ClientConfig) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidArgument)
		}
		c.Logger = logger
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client.
//
// This is useful for testing or for using custom transports.
// Returns an error if client is nil.
//
// Example:
//
//	oaikit.WithHTTPClient(&http.Client{Transport: customTransport})
func WithHTTPClient(client HTTPClient) ClientOption {
	return func(c *ClientConfig) error {
		if client == nil {
			return fmt.Errorf("%w: HTTP client cannot be nil", ErrInvalidArgument)
		}
		c.HTTPClient = client
		return nil
	}
}

// WithCallbacks merges every hook of r into the client's registry.
func WithCallbacks(r *callback.Registry) ClientOption {
	return func(c *ClientConfig) error {
		if r == nil {
			return fmt.Errorf("%w: callback registry cannot be nil", ErrInvalidArgument)
		}
		c.registry().Merge(r)
		return nil
	}
}

// WithBeforeRequestCallback registers a before-request callback.
//
// Before-request callbacks run before the request is sent. Returning an
// error aborts the request.
//
// Example:
//
//	oaikit.WithBeforeRequestCallback(func(ctx context.Context, event *callback.BeforeRequestEvent) error {
//	    log.Printf("%s %s", event.Method, event.Endpoint)
//	    return nil
//	})
func WithBeforeRequestCallback(cb callback.BeforeRequestCallback) ClientOption {
	return func(c *ClientConfig) error {
		if cb == nil {
			return fmt.Errorf("%w: callback cannot be nil", ErrInvalidArgument)
		}
		c.registry().RegisterBeforeRequest(cb)
		return nil
	}
}

// WithSuccessCallback registers a success callback.
//
// Success callbacks receive the endpoint, status, duration and token usage
// of every successful request.
func WithSuccessCallback(cb callback.SuccessCallback) ClientOption {
	return func(c *ClientConfig) error {
		if cb == nil {
			return fmt.Errorf("%w: callback cannot be nil", ErrInvalidArgument)
		}
		c.registry().RegisterSuccess(cb)
		return nil
	}
}

// WithFailureCallback registers a failure callback.
func WithFailureCallback(cb callback.FailureCallback) ClientOption {
	return func(c *ClientConfig) error {
		if cb == nil {
			return fmt.Errorf("%w: callback cannot be nil", ErrInvalidArgument)
		}
		c.registry().RegisterFailure(cb)
		return nil
	}
}

func (c *ClientConfig) registry() *callback.Registry {
	if c.Callbacks == nil {
		c.Callbacks = callback.NewRegistry()
	}
	return c.Callbacks
}

// Validate validates the configuration.
//
// Checks:
//   - a credential is present (missing-configuration otherwise)
//   - Timeout, MaxRetries and RetryDelay are non-negative
//   - RetryMultiplier is positive
//   - HTTPClient is not nil
func (c *ClientConfig) Validate() error {
	if c.Provider == nil && c.APIKey == "" && (c.Azure == nil || (c.Azure.APIKey == "" && c.Azure.Token == "")) {
		return fmt.Errorf("%w: API key is required", ErrMissingConfiguration)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative", ErrInvalidArgument)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must be non-negative", ErrInvalidArgument)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay must be non-negative", ErrInvalidArgument)
	}
	if c.RetryMultiplier <= 0 {
		return fmt.Errorf("%w: retry multiplier must be positive", ErrInvalidArgument)
	}
	if c.HTTPClient == nil {
		return fmt.Errorf("%w: HTTP client cannot be nil", ErrInvalidArgument)
	}
	return nil
}

// buildProvider resolves the provider described by the configuration.
func (c *ClientConfig) buildProvider() (provider.Provider, error) {
	if c.Provider != nil {
		return c.Provider, nil
	}

	if c.Azure != nil {
		opts := []azure.Option{
			azure.WithEndpoint(c.Azure.Endpoint),
			azure.WithResourceName(c.Azure.ResourceName),
			azure.WithDeployment(c.Azure.Deployment),
			azure.WithAPIVersion(c.Azure.APIVersion),
		}
		key := c.Azure.APIKey
		if key == "" {
			key = c.APIKey
		}
		if c.Azure.Token != "" {
			opts = append(opts, azure.WithEntraToken(c.Azure.Token))
		} else {
			opts = append(opts, azure.WithAPIKey(key))
		}
		if c.BaseURL != "" {
			opts = append(opts, azure.WithBaseURL(c.BaseURL))
		}
		return azure.NewProvider(opts...)
	}

	return openai.NewProvider(
		openai.WithAPIKey(c.APIKey),
		openai.WithAPIBase(c.BaseURL),
		openai.WithOrganization(c.Organization),
		openai.WithProject(c.Project),
	)
}

// buildLogger returns the configured logger, or a text logger on stderr at
// warn level (debug level when Debug is set).
func (c *ClientConfig) buildLogger() *xlog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	level := xlog.LogLevel(xlog.LogLevelWarn)
	if c.Debug {
		level = xlog.LogLevel(xlog.LogLevelDebug)
	}
	handler := xlog.NewHandler(xlog.TextFormat, os.Stderr, &slog.HandlerOptions{Level: level.ToSlogLevel()})
	return xlog.NewLoggerWithHandler(handler, level)
}

// Environment variables read by LoadConfigFromEnv.
const (
	EnvAPIKey            = "OPENAI_API_KEY"
	EnvBaseURL           = "OPENAI_BASE_URL"
	EnvOrganization      = "OPENAI_ORG_ID"
	EnvProject           = "OPENAI_PROJECT_ID"
	EnvAzureAPIKey       = "AZURE_OPENAI_API_KEY"
	EnvAzureToken        = "AZURE_OPENAI_TOKEN"
	EnvAzureEndpoint     = "AZURE_OPENAI_ENDPOINT"
	EnvAzureResourceName = "AZURE_OPENAI_RESOURCE_NAME"
	EnvAzureDeployment   = "AZURE_OPENAI_DEPLOYMENT_NAME"
	EnvAzureAPIVersion   = "AZURE_OPENAI_API_VERSION"
)

// LoadConfigFromEnv loads configuration from environment variables.
//
// The given .env files are loaded first (missing files are skipped and
// variables already set in the process win). Azure is selected when an Azure
// credential and an endpoint or resource name are present; otherwise the
// OpenAI variables are used.
//
// Returns a slice of ClientOption functions that can be passed to NewClient.
//
// Example:
//
//	opts, err := oaikit.LoadConfigFromEnv(".env")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := oaikit.NewClient(opts...)
func LoadConfigFromEnv(files ...string) ([]ClientOption, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: loading %s: %v", ErrInvalidArgument, f, err)
		}
	}

	var opts []ClientOption

	azureKey := os.Getenv(EnvAzureAPIKey)
	azureToken := os.Getenv(EnvAzureToken)
	azureEndpoint := os.Getenv(EnvAzureEndpoint)
	azureResource := os.Getenv(EnvAzureResourceName)

	if (azureKey != "" || azureToken != "") && (azureEndpoint != "" || azureResource != "") {
		opts = append(opts, withAzureConfig(AzureConfig{
			Endpoint:     azureEndpoint,
			ResourceName: azureResource,
			Deployment:   os.Getenv(EnvAzureDeployment),
			APIVersion:   os.Getenv(EnvAzureAPIVersion),
			APIKey:       azureKey,
			Token:        azureToken,
		}))
		return opts, nil
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		opts = append(opts, WithAPIKey(key))
	}
	if base := os.Getenv(EnvBaseURL); base != "" {
		opts = append(opts, WithBaseURL(base))
	}
	if org := os.Getenv(EnvOrganization); org != "" {
		opts = append(opts, WithOrganization(org))
	}
	if project := os.Getenv(EnvProject); project != "" {
		opts = append(opts, WithProject(project))
	}

	return opts, nil
}

func withAzureConfig(cfg AzureConfig) ClientOption {
	return func(c *ClientConfig) error {
		c.Azure = &cfg
		return nil
	}
}

// fileConfig is the YAML layout read by LoadConfigFile.
type fileConfig struct {
	APIKey       string       `yaml:"api_key"`
	BaseURL      string       `yaml:"base_url"`
	Organization string       `yaml:"organization"`
	Project      string       `yaml:"project"`
	Timeout      string       `yaml:"timeout"`
	MaxRetries   int          `yaml:"max_retries"`
	Debug        bool         `yaml:"debug"`
	Azure        *AzureConfig `yaml:"azure"`
}

// LoadConfigFile reads a YAML configuration file. ${VAR} references are
// expanded from the environment before parsing.
//
// Example file:
//
//	api_key: ${OPENAI_API_KEY}
//	timeout: 30s
//	azure:
//	  resource_name: acme
//	  deployment: gpt-4o-mini
func LoadConfigFile(path string) ([]ClientOption, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading config file: %v", ErrMissingConfiguration, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &fc); err != nil {
		return nil, fmt.Errorf("%w: parsing config file %s: %v", ErrInvalidArgument, path, err)
	}

	var opts []ClientOption
	if fc.APIKey != "" {
		opts = append(opts, WithAPIKey(fc.APIKey))
	}
	if fc.BaseURL != "" {
		opts = append(opts, WithBaseURL(fc.BaseURL))
	}
	if fc.Organization != "" {
		opts = append(opts, WithOrganization(fc.Organization))
	}
	if fc.Project != "" {
		opts = append(opts, WithProject(fc.Project))
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: timeout %q: %v", ErrInvalidArgument, fc.Timeout, err)
		}
		opts = append(opts, WithTimeout(d))
	}
	if fc.MaxRetries > 0 {
		opts = append(opts, WithRetries(fc.MaxRetries, 500*time.Millisecond, 2))
	}
	if fc.Debug {
		opts = append(opts, WithDebug(true))
	}
	if fc.Azure != nil {
		opts = append(opts, withAzureConfig(*fc.Azure))
	}
	return opts, nil
}

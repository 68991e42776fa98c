package oaikit

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blue-context/oaikit/internal/testutil"
	"github.com/blue-context/oaikit/provider/azure"
)

func applyOptions(t *testing.T, opts ...ClientOption) *ClientConfig {
	t.Helper()
	c := defaultConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			t.Fatalf("option error = %v", err)
		}
	}
	return c
}

func TestDefaultConfig(t *testing.T) {
	config := defaultConfig()

	if config.Timeout != 0 {
		t.Errorf("Timeout = %v, want unbounded", config.Timeout)
	}
	if config.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", config.MaxRetries)
	}
	if config.RetryDelay != 500*time.Millisecond {
		t.Errorf("RetryDelay = %v, want 500ms", config.RetryDelay)
	}
	if config.RetryMultiplier != 2.0 {
		t.Errorf("RetryMultiplier = %f, want 2.0", config.RetryMultiplier)
	}
	if config.HTTPClient == nil {
		t.Error("HTTPClient should be initialized")
	}
	if err := config.Validate(); !errors.Is(err, ErrMissingConfiguration) {
		t.Errorf("Validate() without a key = %v, want missing configuration", err)
	}
}

func TestOptionErrors(t *testing.T) {
	tests := []struct {
		name    string
		opt     ClientOption
		wantErr error
	}{
		{"empty api key", WithAPIKey(""), ErrMissingConfiguration},
		{"empty base url", WithBaseURL(""), ErrInvalidArgument},
		{"azure without deployment", WithAzure("https://acme.openai.azure.com", "", ""), ErrMissingConfiguration},
		{"empty azure token", WithAzureToken(""), ErrMissingConfiguration},
		{"nil provider", WithProvider(nil), ErrInvalidArgument},
		{"negative timeout", WithTimeout(-time.Second), ErrInvalidArgument},
		{"negative retries", WithRetries(-1, time.Second, 2), ErrInvalidArgument},
		{"negative delay", WithRetries(1, -time.Second, 2), ErrInvalidArgument},
		{"zero multiplier", WithRetries(1, time.Second, 0), ErrInvalidArgument},
		{"nil http client", WithHTTPClient(nil), ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opt(defaultConfig())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithRetries(t *testing.T) {
	c := applyOptions(t, WithRetries(3, time.Second, 1.5))

	if c.MaxRetries != 3 || c.RetryDelay != time.Second || c.RetryMultiplier != 1.5 {
		t.Errorf("config = %+v", c)
	}
}

func TestWithHTTPClient(t *testing.T) {
	mock := &testutil.MockHTTPClient{}
	c := applyOptions(t, WithHTTPClient(mock))

	if c.HTTPClient != mock {
		t.Error("HTTPClient was not set")
	}
}

func TestBuildProvider(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ClientOption
		path    string
		wantURL string
		header  string
		want    string
	}{
		{
			name:    "openai default",
			opts:    []ClientOption{WithAPIKey("sk-test")},
			path:    "chat/completions",
			wantURL: "https://api.openai.com/v1/chat/completions",
			header:  "Authorization",
			want:    "Bearer sk-test",
		},
		{
			name:    "compatible server",
			opts:    []ClientOption{WithAPIKey("sk-test"), WithBaseURL("http://localhost:8080/v1/")},
			path:    "embeddings",
			wantURL: "http://localhost:8080/v1/embeddings",
			header:  "Authorization",
			want:    "Bearer sk-test",
		},
		{
			name:    "azure deployment with key",
			opts:    []ClientOption{WithAPIKey("az-key"), WithAzure("https://acme.openai.azure.com", "gpt-4o-mini", "2024-10-21")},
			path:    "chat/completions",
			wantURL: "https://acme.openai.azure.com/openai/deployments/gpt-4o-mini/chat/completions?api-version=2024-10-21",
			header:  "api-key",
			want:    "az-key",
		},
		{
			name:    "azure deployment with token",
			opts:    []ClientOption{WithAzure("https://acme.openai.azure.com", "gpt-4o-mini", "2024-10-21"), WithAzureToken("entra")},
			path:    "embeddings",
			wantURL: "https://acme.openai.azure.com/openai/deployments/gpt-4o-mini/embeddings?api-version=2024-10-21",
			header:  "Authorization",
			want:    "Bearer entra",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := applyOptions(t, tt.opts...)
			if err := c.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			p, err := c.buildProvider()
			if err != nil {
				t.Fatalf("buildProvider() error = %v", err)
			}
			if got := p.URL(tt.path, nil); got != tt.wantURL {
				t.Errorf("URL() = %q, want %q", got, tt.wantURL)
			}
			h := http.Header{}
			p.Authorize(h)
			if got := h.Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestWithProvider(t *testing.T) {
	p, err := azure.NewProvider(azure.WithBaseURL("https://gateway.example.com/openai/v1"), azure.WithAPIKey("k"))
	if err != nil {
		t.Fatalf("azure.NewProvider() error = %v", err)
	}
	c := applyOptions(t, WithProvider(p))
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	got, err := c.buildProvider()
	if err != nil {
		t.Fatalf("buildProvider() error = %v", err)
	}
	if got != p {
		t.Error("buildProvider() did not return the given provider")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("openai variables", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "sk-env")
		t.Setenv(EnvBaseURL, "http://localhost:9000/v1")
		t.Setenv(EnvProject, "proj_1")
		t.Setenv(EnvAzureAPIKey, "")
		t.Setenv(EnvAzureToken, "")

		opts, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() error = %v", err)
		}
		c := applyOptions(t, opts...)
		if c.APIKey != "sk-env" || c.BaseURL != "http://localhost:9000/v1" || c.Project != "proj_1" {
			t.Errorf("config = %+v", c)
		}
		if c.Azure != nil {
			t.Error("Azure selected without Azure variables")
		}
	})

	t.Run("azure variables", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvAzureAPIKey, "az-env")
		t.Setenv(EnvAzureToken, "")
		t.Setenv(EnvAzureEndpoint, "")
		t.Setenv(EnvAzureResourceName, "acme")
		t.Setenv(EnvAzureDeployment, "gpt-4o")
		t.Setenv(EnvAzureAPIVersion, "")

		opts, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() error = %v", err)
		}
		c := applyOptions(t, opts...)
		if c.Azure == nil || c.Azure.ResourceName != "acme" || c.Azure.APIKey != "az-env" {
			t.Fatalf("Azure = %+v", c.Azure)
		}
		p, err := c.buildProvider()
		if err != nil {
			t.Fatalf("buildProvider() error = %v", err)
		}
		if p.Name() != "azure" {
			t.Errorf("Name() = %q, want azure", p.Name())
		}
	})

	t.Run("dotenv file", func(t *testing.T) {
		t.Setenv(EnvAzureAPIKey, "")
		t.Setenv(EnvAzureToken, "")
		// unset so the file value is visible; godotenv never overrides
		t.Setenv(EnvAPIKey, "")
		os.Unsetenv(EnvAPIKey)

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("OPENAI_API_KEY=sk-dotenv\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		opts, err := LoadConfigFromEnv(path, filepath.Join(t.TempDir(), "missing.env"))
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() error = %v", err)
		}
		c := applyOptions(t, opts...)
		if c.APIKey != "sk-dotenv" {
			t.Errorf("APIKey = %q, want sk-dotenv", c.APIKey)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("TEST_OAIKIT_KEY", "sk-yaml")
	path := filepath.Join(t.TempDir(), "oaikit.yaml")
	content := "api_key: ${TEST_OAIKIT_KEY}\ntimeout: 30s\nmax_retries: 2\norganization: org-9\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	c := applyOptions(t, opts...)
	if c.APIKey != "sk-yaml" {
		t.Errorf("APIKey = %q", c.APIKey)
	}
	if c.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", c.Timeout)
	}
	if c.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d", c.MaxRetries)
	}
	if c.Organization != "org-9" {
		t.Errorf("Organization = %q", c.Organization)
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrMissingConfiguration) {
		t.Errorf("missing file error = %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("timeout: soon\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(bad); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad timeout error = %v", err)
	}
}

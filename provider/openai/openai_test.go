package openai

import (
	"errors"
	"net/http"
	"testing"

	"github.com/blue-context/oaikit/types"
)

// TestNewProvider tests the NewProvider constructor
func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		wantErr  error
		wantBase string
	}{
		{
			name:    "missing API key",
			opts:    []Option{},
			wantErr: types.ErrMissingConfiguration,
		},
		{
			name:     "with API key",
			opts:     []Option{WithAPIKey("sk-test")},
			wantBase: DefaultBaseURL,
		},
		{
			name: "with all options",
			opts: []Option{
				WithAPIKey("sk-test"),
				WithAPIBase("https://custom.example.com/v1"),
				WithOrganization("org-1"),
				WithProject("proj-1"),
			},
			wantBase: "https://custom.example.com/v1",
		},
		{
			name:     "empty base falls back",
			opts:     []Option{WithAPIKey("sk-test"), WithAPIBase("")},
			wantBase: DefaultBaseURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.opts...)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewProvider() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if p.BaseURL() != tt.wantBase {
				t.Errorf("BaseURL() = %q, want %q", p.BaseURL(), tt.wantBase)
			}
			if p.Name() != "openai" {
				t.Errorf("Name() = %q", p.Name())
			}
		})
	}
}

func TestURLs(t *testing.T) {
	p, err := NewProvider(WithAPIKey("sk-test"))
	if err != nil {
		t.Fatal(err)
	}

	if got := p.URL("chat/completions", nil); got != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("URL() = %q", got)
	}
	if got := p.RealtimeURL("gpt-4o-realtime-preview"); got != "wss://api.openai.com/v1/realtime?model=gpt-4o-realtime-preview" {
		t.Errorf("RealtimeURL() = %q", got)
	}

	local, _ := NewProvider(WithAPIKey("sk-test"), WithAPIBase("http://127.0.0.1:9000/v1/"))
	if got := local.RealtimeURL("m"); got != "ws://127.0.0.1:9000/v1/realtime?model=m" {
		t.Errorf("RealtimeURL() = %q", got)
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want http.Header
	}{
		{
			name: "key only",
			opts: []Option{WithAPIKey("sk-test")},
			want: http.Header{"Authorization": {"Bearer sk-test"}},
		},
		{
			name: "organization and project",
			opts: []Option{WithAPIKey("sk-test"), WithOrganization("org-1"), WithProject("proj-1")},
			want: http.Header{
				"Authorization":       {"Bearer sk-test"},
				"Openai-Organization": {"org-1"},
				"Openai-Project":      {"proj-1"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			h := http.Header{}
			p.Authorize(h)
			if len(h) != len(tt.want) {
				t.Fatalf("got %d headers, want %d: %v", len(h), len(tt.want), h)
			}
			for k, v := range tt.want {
				if h.Get(k) != v[0] {
					t.Errorf("%s = %q, want %q", k, h.Get(k), v[0])
				}
			}
		})
	}
}

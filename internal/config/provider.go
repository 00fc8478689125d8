package config

import (
	"strconv"
	"strings"

	"github.com/mdreader/llmstream/internal/provider"
)

// Provider describes one upstream endpoint whose streams this module
// decodes. The credential and base URL stay opaque to the decoding
// pipeline; they exist so the CLI and the embedding product can issue
// the request that produces the stream.
type Provider struct {
	// Kind selects the wire dialect (openai, claude, gemini). The vendor
	// aliases anthropic and google are accepted.
	Kind string `yaml:"kind" json:"kind"`

	// Name is a display name for this entry.
	// Required when multiple entries share a kind.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Enabled allows disabling an entry without removing it. Default: true.
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`

	// BaseURL is the API endpoint URL. ${VAR} references are expanded
	// against the environment at load time.
	BaseURL string `yaml:"base-url,omitempty" json:"base-url,omitempty"`

	// APIKey authenticates requests to this endpoint. ${VAR} references
	// are expanded against the environment at load time.
	APIKey string `yaml:"api-key,omitempty" json:"api-key,omitempty"`

	// Model is the default model id requested from this endpoint.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`

	// Headers adds custom HTTP headers to requests.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// IsEnabled returns true if the entry is enabled (default: true).
func (p *Provider) IsEnabled() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

// DisplayName returns the display name for this entry.
// Falls back to kind if name is not set.
func (p *Provider) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Kind
}

// DecoderKind resolves the configured kind string to the decoder registry
// key. Returns KindUnknown for names no decoder claims.
func (p *Provider) DecoderKind() provider.Kind {
	return provider.FromString(p.Kind)
}

// Validate checks if the provider entry is usable.
func (p *Provider) Validate() error {
	if strings.TrimSpace(p.Kind) == "" {
		return &ValidationError{Field: "providers.kind", Message: "kind is required"}
	}
	if !provider.FromString(p.Kind).Valid() {
		return &ValidationError{Field: "providers.kind", Message: "unknown provider kind " + strconv.Quote(p.Kind)}
	}
	return nil
}

// SanitizeProviders normalizes and validates the provider list: entries
// are trimmed, disabled and invalid ones dropped, and duplicates (same
// kind, name, and base URL) collapsed to the first occurrence.
func SanitizeProviders(providers []Provider) []Provider {
	if len(providers) == 0 {
		return nil
	}

	result := make([]Provider, 0, len(providers))
	seen := make(map[string]struct{})

	for i := range providers {
		p := providers[i]

		if !p.IsEnabled() {
			continue
		}

		p.Kind = strings.TrimSpace(strings.ToLower(p.Kind))
		p.Name = strings.TrimSpace(p.Name)
		p.APIKey = strings.TrimSpace(p.APIKey)
		p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
		p.Model = strings.TrimSpace(p.Model)
		p.Headers = NormalizeHeaders(p.Headers)

		if p.Validate() != nil {
			continue
		}

		key := p.Kind + "|" + p.Name + "|" + p.BaseURL
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}

		result = append(result, p)
	}

	return result
}

// NormalizeHeaders trims header names and values and drops empty names.
func NormalizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

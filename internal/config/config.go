// Package config loads and validates the module configuration. YAML is
// the primary format; .json files may carry comments and trailing commas
// and are standardized before decoding. Credential fields support ${VAR}
// expansion so keys can live in the environment or a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/mdreader/llmstream/internal/json"
	log "github.com/mdreader/llmstream/internal/logging"
	"github.com/mdreader/llmstream/internal/provider"
)

// Config is the root configuration.
type Config struct {
	// DefaultProvider selects the decoder when a caller does not name one.
	DefaultProvider string `yaml:"default-provider,omitempty" json:"default-provider,omitempty"`

	// Providers lists the upstream endpoints streams can originate from.
	Providers []Provider `yaml:"providers,omitempty" json:"providers,omitempty"`

	// Stream tunes the per-request decoding session.
	Stream StreamConfig `yaml:"stream,omitempty" json:"stream,omitempty"`

	// Logging controls log level and destination.
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// StreamConfig tunes the per-request stream session.
type StreamConfig struct {
	// ChunkSizeBytes splits replayed captures into reads of this size.
	// Zero keeps whatever sizes the source delivers.
	ChunkSizeBytes int `yaml:"chunk-size-bytes,omitempty" json:"chunk-size-bytes,omitempty"`

	// IdleTimeoutSeconds aborts a stream when no bytes arrive for this
	// long. Zero disables idle detection.
	IdleTimeoutSeconds int `yaml:"idle-timeout-seconds,omitempty" json:"idle-timeout-seconds,omitempty"`
}

// IdleTimeout returns the configured idle timeout as a duration.
func (s StreamConfig) IdleTimeout() time.Duration {
	if s.IdleTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level,omitempty" json:"level,omitempty"`

	// ToFile routes logs to a rotating file instead of stderr.
	ToFile bool `yaml:"to-file,omitempty" json:"to-file,omitempty"`
}

// ValidationError reports a configuration field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "config: " + e.Field + ": " + e.Message
}

// NewDefaultConfig returns the configuration used when no file exists.
func NewDefaultConfig() *Config {
	return &Config{
		DefaultProvider: provider.KindOpenAI.String(),
		Stream: StreamConfig{
			IdleTimeoutSeconds: 120,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads, expands, and validates the configuration at path.
func LoadConfig(path string) (*Config, error) {
	return loadConfig(path, false)
}

// LoadConfigOptional behaves like LoadConfig but returns the default
// configuration when the file does not exist and optional is true.
func LoadConfigOptional(path string, optional bool) (*Config, error) {
	return loadConfig(path, optional)
}

func loadConfig(path string, optional bool) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := NewDefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".hujson":
		std, hErr := hujson.Standardize(raw)
		if hErr != nil {
			return nil, fmt.Errorf("config: standardize %s: %w", path, hErr)
		}
		if uErr := json.Unmarshal(std, cfg); uErr != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, uErr)
		}
	default:
		if uErr := yaml.Unmarshal(raw, cfg); uErr != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, uErr)
		}
	}

	cfg.expandEnv()
	cfg.Providers = SanitizeProviders(cfg.Providers)
	if vErr := cfg.Validate(); vErr != nil {
		return nil, vErr
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env in the working directory so that
// ${VAR} references in the config resolve. Missing files are fine.
func LoadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	if err := godotenv.Load(filepath.Join(wd, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("failed to load .env file: %v", err)
	}
}

// expandEnv resolves ${VAR} references in credential-bearing fields.
func (c *Config) expandEnv() {
	for i := range c.Providers {
		p := &c.Providers[i]
		p.APIKey = os.ExpandEnv(p.APIKey)
		p.BaseURL = os.ExpandEnv(p.BaseURL)
		for k, v := range p.Headers {
			p.Headers[k] = os.ExpandEnv(v)
		}
	}
}

// Validate checks cross-field consistency. The first problem found is
// returned as a *ValidationError.
func (c *Config) Validate() error {
	if c.DefaultProvider != "" && !provider.FromString(c.DefaultProvider).Valid() {
		return &ValidationError{
			Field:   "default-provider",
			Message: fmt.Sprintf("unknown provider %q", c.DefaultProvider),
		}
	}
	if c.Stream.ChunkSizeBytes < 0 {
		return &ValidationError{Field: "stream.chunk-size-bytes", Message: "must not be negative"}
	}
	if c.Stream.IdleTimeoutSeconds < 0 {
		return &ValidationError{Field: "stream.idle-timeout-seconds", Message: "must not be negative"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		}
	}
	for i := range c.Providers {
		if err := c.Providers[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ProviderFor returns the first enabled entry of the given kind, or nil.
func (c *Config) ProviderFor(kind provider.Kind) *Provider {
	for i := range c.Providers {
		if c.Providers[i].DecoderKind() == kind {
			return &c.Providers[i]
		}
	}
	return nil
}

// Sanitize returns a deep copy with credentials masked, safe for logging.
func (c *Config) Sanitize() *Config {
	out := *c
	out.Providers = make([]Provider, len(c.Providers))
	for i, p := range c.Providers {
		p.APIKey = maskSecret(p.APIKey)
		if len(p.Headers) > 0 {
			headers := make(map[string]string, len(p.Headers))
			for k, v := range p.Headers {
				if isSensitiveHeader(k) {
					v = maskSecret(v)
				}
				headers[k] = v
			}
			p.Headers = headers
		}
		out.Providers[i] = p
	}
	return &out
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-2:]
}

func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-api-key", "x-goog-api-key", "api-key":
		return true
	}
	return false
}

// GenerateDefaultConfigYAML renders a commented starter configuration,
// written on first run.
func GenerateDefaultConfigYAML() []byte {
	return []byte(`# llmstream configuration
default-provider: openai

# providers:
#   - kind: openai
#     base-url: https://api.openai.com/v1
#     api-key: ${OPENAI_API_KEY}
#     model: gpt-4o-mini
#   - kind: claude
#     api-key: ${ANTHROPIC_API_KEY}
#   - kind: gemini
#     api-key: ${GEMINI_API_KEY}

stream:
  # Abort a stream when no bytes arrive for this long. 0 disables.
  idle-timeout-seconds: 120

logging:
  level: info
  to-file: false
`)
}

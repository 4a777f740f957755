// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultLogLevel        = "INFO"
	DefaultIndexWorkers    = 4
	DefaultSearchLimit     = 10
	DefaultOllamaBaseURL   = "http://localhost:11434"
	DefaultVisionModel     = "llava-phi3:latest"
	DefaultEndpointTimeout = 120 * time.Second
)

// DefaultDescribePrompt is the prompt sent to the vision model when the
// caller provides none.
const DefaultDescribePrompt = "Describe this image in detail:"

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// ProviderKind selects the model-serving endpoint implementation.
type ProviderKind string

// ProviderKind values.
const (
	ProviderOllama ProviderKind = "ollama"
	ProviderOpenAI ProviderKind = "openai"
)

// Endpoint configures the model-serving endpoint that turns images into
// descriptions and texts into embeddings.
type Endpoint struct {
	kind           ProviderKind
	baseURL        string
	visionModel    string
	embeddingModel string
	apiKey         string
	timeout        time.Duration
}

// NewEndpoint creates an Endpoint with defaults.
func NewEndpoint(opts ...EndpointOption) Endpoint {
	e := Endpoint{
		kind:        ProviderOllama,
		baseURL:     DefaultOllamaBaseURL,
		visionModel: DefaultVisionModel,
		timeout:     DefaultEndpointTimeout,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Kind returns the provider kind.
func (e Endpoint) Kind() ProviderKind { return e.kind }

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// VisionModel returns the model used to describe images.
func (e Endpoint) VisionModel() string { return e.visionModel }

// EmbeddingModel returns the model used to embed text. Empty means the
// vision model also serves embeddings (the single-model ollama setup).
func (e Endpoint) EmbeddingModel() string { return e.embeddingModel }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithKind sets the provider kind.
func WithKind(kind ProviderKind) EndpointOption {
	return func(e *Endpoint) { e.kind = kind }
}

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) {
		if url != "" {
			e.baseURL = url
		}
	}
}

// WithVisionModel sets the vision model.
func WithVisionModel(model string) EndpointOption {
	return func(e *Endpoint) {
		if model != "" {
			e.visionModel = model
		}
	}
}

// WithEmbeddingModel sets the embedding model.
func WithEmbeddingModel(model string) EndpointOption {
	return func(e *Endpoint) { e.embeddingModel = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithEndpointTimeout sets the request timeout.
func WithEndpointTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host         string
	port         int
	dataDir      string
	dbURL        string
	logLevel     string
	logFormat    LogFormat
	endpoint     Endpoint
	indexWorkers int
	searchLimit  int
	httpCacheDir string
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:         DefaultHost,
		port:         DefaultPort,
		dataDir:      DefaultDataDir(),
		logLevel:     DefaultLogLevel,
		logFormat:    LogFormatPretty,
		endpoint:     NewEndpoint(),
		indexWorkers: DefaultIndexWorkers,
		searchLimit:  DefaultSearchLimit,
	}
}

// Host returns the server host.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port address string.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database URL. When unset, the SQLite database under the
// data directory is used.
func (c AppConfig) DBURL() string {
	if c.dbURL != "" {
		return c.dbURL
	}
	return "sqlite:///" + filepath.Join(c.dataDir, "photolens.db")
}

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Endpoint returns the model-serving endpoint configuration.
func (c AppConfig) Endpoint() Endpoint { return c.endpoint }

// IndexWorkers returns the indexing worker pool size.
func (c AppConfig) IndexWorkers() int { return c.indexWorkers }

// SearchLimit returns the default search result limit.
func (c AppConfig) SearchLimit() int { return c.searchLimit }

// HTTPCacheDir returns the directory for caching provider HTTP responses,
// or empty when caching is disabled.
func (c AppConfig) HTTPCacheDir() string { return c.httpCacheDir }

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) {
		if host != "" {
			c.host = host
		}
	}
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) {
		if port > 0 {
			c.port = port
		}
	}
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		if dir != "" {
			c.dataDir = dir
		}
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) {
		if level != "" {
			c.logLevel = level
		}
	}
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithEndpoint sets the model-serving endpoint.
func WithEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.endpoint = e }
}

// WithEndpointOptions applies endpoint options on top of the current
// endpoint, preserving values set by earlier configuration layers.
func WithEndpointOptions(opts ...EndpointOption) AppConfigOption {
	return func(c *AppConfig) {
		for _, opt := range opts {
			opt(&c.endpoint)
		}
	}
}

// WithIndexWorkers sets the indexing worker pool size.
func WithIndexWorkers(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.indexWorkers = n
		}
	}
}

// WithSearchLimit sets the default search result limit.
func WithSearchLimit(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithHTTPCacheDir sets the provider HTTP response cache directory.
func WithHTTPCacheDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.httpCacheDir = dir }
}

// Apply returns a copy of the config with the options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewAppConfigWithOptions creates an AppConfig with options applied on top
// of the defaults.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".photolens"
	}
	return filepath.Join(home, ".photolens")
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

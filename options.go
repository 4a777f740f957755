package photolens

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/photolens/photolens/infrastructure/provider"
	"github.com/photolens/photolens/internal/config"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	dbURL     string
	provider  provider.Provider
	logger    *slog.Logger
	dimension int
	cacheDir  string
	timeout   time.Duration
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		timeout: config.DefaultEndpointTimeout,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database, stored at path.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithDatabaseURL configures the database from a URL. Supported schemes are
// sqlite:// and postgresql://; PostgreSQL requires the pgvector extension.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithOllama configures an Ollama endpoint as the provider. The vision model
// serves both description and embedding unless WithProvider is used for a
// custom split.
func WithOllama(baseURL, visionModel string) Option {
	return func(c *clientConfig) {
		c.provider = provider.NewOllama(provider.OllamaConfig{
			BaseURL:     baseURL,
			VisionModel: visionModel,
			Timeout:     c.timeout,
			Transport:   c.transport(),
		})
	}
}

// WithOpenAI configures an OpenAI-compatible endpoint as the provider.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.provider = provider.NewOpenAI(provider.OpenAIConfig{
			APIKey:    apiKey,
			Timeout:   c.timeout,
			Transport: c.transport(),
		})
	}
}

// WithEndpoint configures the provider from an endpoint configuration, for
// callers wiring the client from layered config.
func WithEndpoint(e config.Endpoint) Option {
	return func(c *clientConfig) {
		switch e.Kind() {
		case config.ProviderOpenAI:
			c.provider = provider.NewOpenAI(provider.OpenAIConfig{
				APIKey:         e.APIKey(),
				BaseURL:        e.BaseURL(),
				VisionModel:    e.VisionModel(),
				EmbeddingModel: e.EmbeddingModel(),
				Timeout:        e.Timeout(),
				Transport:      c.transport(),
			})
		default:
			c.provider = provider.NewOllama(provider.OllamaConfig{
				BaseURL:        e.BaseURL(),
				VisionModel:    e.VisionModel(),
				EmbeddingModel: e.EmbeddingModel(),
				Timeout:        e.Timeout(),
				Transport:      c.transport(),
			})
		}
	}
}

// WithProvider sets a custom provider implementation.
func WithProvider(p provider.Provider) Option {
	return func(c *clientConfig) {
		c.provider = p
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithDimension fixes the embedding dimension up front, skipping the probe
// request that PostgreSQL backends otherwise make at startup.
func WithDimension(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.dimension = n
		}
	}
}

// WithHTTPCacheDir caches successful provider responses on disk under dir.
// Re-indexing an unchanged collection then costs no model calls. Must appear
// before the provider option it should apply to.
func WithHTTPCacheDir(dir string) Option {
	return func(c *clientConfig) {
		c.cacheDir = dir
	}
}

// WithProviderTimeout sets the HTTP timeout for provider calls. Must appear
// before the provider option it should apply to.
func WithProviderTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func (c *clientConfig) transport() http.RoundTripper {
	if c.cacheDir == "" {
		return nil
	}
	return provider.NewCachingTransport(c.cacheDir, nil)
}

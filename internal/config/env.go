package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix applied to every environment variable.
const envPrefix = "PHOTOLENS"

// EnvConfig holds all environment-based configuration. Field names map to
// environment variables with the PHOTOLENS_ prefix; nested structs use an
// underscore delimiter (e.g. PHOTOLENS_ENDPOINT_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: PHOTOLENS_HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST"`

	// Port is the server port to listen on.
	// Env: PHOTOLENS_PORT (default: 8080)
	Port int `envconfig:"PORT"`

	// DataDir is the data directory path.
	// Env: PHOTOLENS_DATA_DIR
	// Default: ~/.photolens
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: PHOTOLENS_DB_URL
	// Default: sqlite:///{data_dir}/photolens.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: PHOTOLENS_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL"`

	// LogFormat is the log output format (pretty or json).
	// Env: PHOTOLENS_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT"`

	// Endpoint configures the model-serving endpoint.
	Endpoint EndpointEnv `envconfig:"ENDPOINT"`

	// IndexWorkers is the indexing worker pool size.
	// Env: PHOTOLENS_INDEX_WORKERS (default: 4)
	IndexWorkers int `envconfig:"INDEX_WORKERS"`

	// SearchLimit is the default search result limit.
	// Env: PHOTOLENS_SEARCH_LIMIT (default: 10)
	SearchLimit int `envconfig:"SEARCH_LIMIT"`

	// HTTPCacheDir is the directory for caching provider HTTP responses to
	// disk. When set, POST request/response pairs are cached to avoid
	// repeated model calls.
	// Env: PHOTOLENS_HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`
}

// EndpointEnv holds environment configuration for the model endpoint.
type EndpointEnv struct {
	// Kind selects the provider implementation (ollama or openai).
	// Env: PHOTOLENS_ENDPOINT_KIND (default: ollama)
	Kind string `envconfig:"KIND"`

	// BaseURL is the base URL for the endpoint.
	// Env: PHOTOLENS_ENDPOINT_BASE_URL (default: http://localhost:11434)
	BaseURL string `envconfig:"BASE_URL"`

	// VisionModel is the model used to describe images.
	// Env: PHOTOLENS_ENDPOINT_VISION_MODEL
	VisionModel string `envconfig:"VISION_MODEL"`

	// EmbeddingModel is the model used to embed text. When empty, the
	// vision model serves embeddings too.
	// Env: PHOTOLENS_ENDPOINT_EMBEDDING_MODEL
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL"`

	// APIKey is the API key for authentication.
	// Env: PHOTOLENS_ENDPOINT_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// TimeoutSeconds is the per-request timeout in seconds.
	// Env: PHOTOLENS_ENDPOINT_TIMEOUT_SECONDS (default: 120)
	TimeoutSeconds int `envconfig:"TIMEOUT_SECONDS"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Options converts the environment configuration into AppConfig options.
// Unset environment values produce no-op options, so earlier configuration
// layers (defaults, config file) shine through.
func (e EnvConfig) Options() []AppConfigOption {
	endpointOpts := []EndpointOption{
		WithBaseURL(e.Endpoint.BaseURL),
		WithVisionModel(e.Endpoint.VisionModel),
		WithAPIKey(e.Endpoint.APIKey),
	}
	if e.Endpoint.EmbeddingModel != "" {
		endpointOpts = append(endpointOpts, WithEmbeddingModel(e.Endpoint.EmbeddingModel))
	}
	if kind := strings.ToLower(strings.TrimSpace(e.Endpoint.Kind)); kind != "" {
		endpointOpts = append(endpointOpts, WithKind(ProviderKind(kind)))
	}
	if e.Endpoint.TimeoutSeconds > 0 {
		endpointOpts = append(endpointOpts,
			WithEndpointTimeout(time.Duration(e.Endpoint.TimeoutSeconds)*time.Second))
	}

	opts := []AppConfigOption{
		WithHost(e.Host),
		WithPort(e.Port),
		WithDataDir(e.DataDir),
		WithLogLevel(e.LogLevel),
		WithIndexWorkers(e.IndexWorkers),
		WithSearchLimit(e.SearchLimit),
		WithEndpointOptions(endpointOpts...),
	}
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.HTTPCacheDir != "" {
		opts = append(opts, WithHTTPCacheDir(e.HTTPCacheDir))
	}
	if format := strings.ToLower(strings.TrimSpace(e.LogFormat)); format != "" {
		opts = append(opts, WithLogFormat(LogFormat(format)))
	}

	return opts
}

// ToAppConfig converts the environment configuration into an AppConfig,
// applying defaults for unset values.
func (e EnvConfig) ToAppConfig() AppConfig {
	return NewAppConfigWithOptions(e.Options()...)
}

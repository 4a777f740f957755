package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the YAML configuration file layout.
//
//	host: 0.0.0.0
//	port: 8080
//	data_dir: /var/lib/photolens
//	endpoint:
//	  kind: ollama
//	  base_url: http://localhost:11434
//	  vision_model: llava-phi3:latest
type FileConfig struct {
	Host         string          `yaml:"host"`
	Port         int             `yaml:"port"`
	DataDir      string          `yaml:"data_dir"`
	DBURL        string          `yaml:"db_url"`
	LogLevel     string          `yaml:"log_level"`
	LogFormat    string          `yaml:"log_format"`
	IndexWorkers int             `yaml:"index_workers"`
	SearchLimit  int             `yaml:"search_limit"`
	HTTPCacheDir string          `yaml:"http_cache_dir"`
	Endpoint     FileEndpointCfg `yaml:"endpoint"`
}

// FileEndpointCfg is the endpoint section of the YAML config file.
type FileEndpointCfg struct {
	Kind           string `yaml:"kind"`
	BaseURL        string `yaml:"base_url"`
	VisionModel    string `yaml:"vision_model"`
	EmbeddingModel string `yaml:"embedding_model"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoadFile reads a YAML config file. An empty path or a missing file yields
// a zero FileConfig (no options), not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Options converts the file configuration into AppConfig options. Zero
// values produce no-op options.
func (f FileConfig) Options() []AppConfigOption {
	endpointOpts := []EndpointOption{
		WithBaseURL(f.Endpoint.BaseURL),
		WithVisionModel(f.Endpoint.VisionModel),
		WithAPIKey(f.Endpoint.APIKey),
	}
	if f.Endpoint.EmbeddingModel != "" {
		endpointOpts = append(endpointOpts, WithEmbeddingModel(f.Endpoint.EmbeddingModel))
	}
	if kind := strings.ToLower(strings.TrimSpace(f.Endpoint.Kind)); kind != "" {
		endpointOpts = append(endpointOpts, WithKind(ProviderKind(kind)))
	}
	if f.Endpoint.TimeoutSeconds > 0 {
		endpointOpts = append(endpointOpts,
			WithEndpointTimeout(time.Duration(f.Endpoint.TimeoutSeconds)*time.Second))
	}

	opts := []AppConfigOption{
		WithHost(f.Host),
		WithPort(f.Port),
		WithDataDir(f.DataDir),
		WithLogLevel(f.LogLevel),
		WithIndexWorkers(f.IndexWorkers),
		WithSearchLimit(f.SearchLimit),
		WithEndpointOptions(endpointOpts...),
	}
	if f.DBURL != "" {
		opts = append(opts, WithDBURL(f.DBURL))
	}
	if f.HTTPCacheDir != "" {
		opts = append(opts, WithHTTPCacheDir(f.HTTPCacheDir))
	}
	if format := strings.ToLower(strings.TrimSpace(f.LogFormat)); format != "" {
		opts = append(opts, WithLogFormat(LogFormat(format)))
	}

	return opts
}

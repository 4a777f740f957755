package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/photolens/photolens/infrastructure/api"
	apiv1 "github.com/photolens/photolens/infrastructure/api/v1"
	"github.com/photolens/photolens/internal/config"
	"github.com/photolens/photolens/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		host       string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. YAML config file (if --config specified)
  3. .env file (if --env-file specified or .env exists in current directory)
  4. Environment variables
  5. Command line flags

Environment variables:
  PHOTOLENS_HOST                 Server host to bind to (default: 0.0.0.0)
  PHOTOLENS_PORT                 Server port to listen on (default: 8080)
  PHOTOLENS_DATA_DIR             Data directory (default: ~/.photolens)
  PHOTOLENS_DB_URL               Database URL (default: sqlite:///{data_dir}/photolens.db)
  PHOTOLENS_LOG_LEVEL            Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  PHOTOLENS_LOG_FORMAT           Log format: pretty, json (default: pretty)
  PHOTOLENS_INDEX_WORKERS        Concurrent photos during indexing (default: 4)
  PHOTOLENS_SEARCH_LIMIT         Default search result limit (default: 10)
  PHOTOLENS_HTTP_CACHE_DIR       Cache provider responses under this directory

  PHOTOLENS_ENDPOINT_*           Model-serving endpoint configuration
    KIND                         Provider kind: ollama, openai (default: ollama)
    BASE_URL                     Base URL (default: http://localhost:11434)
    VISION_MODEL                 Vision model (default: llava-phi3:latest)
    EMBEDDING_MODEL              Embedding model (default: the vision model)
    API_KEY                      API key (openai only)
    TIMEOUT_SECONDS              Request timeout in seconds (default: 120)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, configFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, configFile, host string, port int) error {
	cfg, err := loadConfig(envFile, configFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	logger := log.New(cfg)

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close client", slog.Any("error", err))
		}
	}()

	server := api.NewServer(cfg.Addr(), logger)
	router := server.Router()

	apiv1.Mount(router, client)

	router.Get("/health", healthHandler)
	router.Get("/healthz", healthHandler)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"name":"photolens","version":"%s"}`, version)
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	logger.Info("starting server",
		slog.String("addr", cfg.Addr()),
		slog.String("version", version),
	)
	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}

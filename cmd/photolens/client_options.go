package main

import (
	"fmt"

	"github.com/photolens/photolens"
	"github.com/photolens/photolens/internal/config"
	"github.com/photolens/photolens/internal/log"
)

// newClient builds a photolens client from the layered configuration. The
// returned client must be closed by the caller.
func newClient(cfg config.AppConfig) (*photolens.Client, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	opts := []photolens.Option{
		photolens.WithDatabaseURL(cfg.DBURL()),
		photolens.WithLogger(log.New(cfg)),
	}
	if cacheDir := cfg.HTTPCacheDir(); cacheDir != "" {
		opts = append(opts, photolens.WithHTTPCacheDir(cacheDir))
	}
	opts = append(opts, photolens.WithEndpoint(cfg.Endpoint()))

	client, err := photolens.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

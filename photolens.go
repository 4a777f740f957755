// Package photolens provides semantic photo search: photos are described by
// a vision model, the descriptions are embedded, and both image and text
// queries are resolved in the shared embedding space.
//
// Basic usage:
//
//	client, err := photolens.New(
//	    photolens.WithSQLite("photolens.db"),
//	    photolens.WithOllama("http://localhost:11434", "llava-phi3:latest"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Index a photo collection
//	report, err := client.Indexing.Run(ctx, service.IndexParams{
//	    Dir:          "/photos/vacation",
//	    SkipExisting: true,
//	})
//
//	// Search by text
//	results, err := client.Search.ByText(ctx, "sunset over water",
//	    service.SearchParams{Limit: 5})
//
//	for _, r := range results {
//	    fmt.Println(r.PhotoPath(), r.Distance())
//	}
package photolens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/photolens/photolens/application/service"
	"github.com/photolens/photolens/domain/photo"
	"github.com/photolens/photolens/infrastructure/persistence"
	"github.com/photolens/photolens/infrastructure/provider"
	"github.com/photolens/photolens/internal/config"
	"github.com/photolens/photolens/internal/database"
)

// Sentinel errors for client construction and lifecycle.
var (
	ErrNoDatabase   = errors.New("no database configured: use WithSQLite or WithDatabaseURL")
	ErrNoProvider   = errors.New("no provider configured: use WithOllama, WithOpenAI or WithProvider")
	ErrClientClosed = errors.New("client is closed")
)

// Client is the main entry point for the photolens library.
//
// Access resources via struct fields:
//
//	client.Indexing.Run(ctx, params)
//	client.Search.ByText(ctx, "query", params)
//	client.Library.PhotoPaths(ctx)
type Client struct {
	Indexing *service.Indexer
	Search   *service.Search
	Library  *service.Library
	Models   *service.Models

	db       database.Database
	index    photo.Index
	provider provider.Provider
	logger   *slog.Logger
	closed   atomic.Bool
}

// New creates a Client with the given options. A database and a provider
// are required.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}
	if cfg.provider == nil {
		return nil, ErrNoProvider
	}

	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// PostgreSQL declares VECTOR(n) columns, so the embedding dimension must
	// be known before the table exists; probe the provider once. SQLite
	// stores JSON and discovers the dimension from the first record.
	dimension := cfg.dimension
	if db.IsPostgres() && dimension == 0 {
		probe, err := cfg.provider.EmbedText(ctx, "dimension probe")
		if err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("probe embedding dimension: %w", err), errClose)
		}
		dimension = len(probe)
	}

	index, err := persistence.NewIndex(ctx, db, dimension, logger)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("create index: %w", err), errClose)
	}

	client := &Client{
		db:       db,
		index:    index,
		provider: cfg.provider,
		logger:   logger,
	}

	client.Indexing = service.NewIndexer(index, cfg.provider, logger)
	client.Search = service.NewSearch(index, cfg.provider, logger)
	client.Library = service.NewLibrary(index, logger)
	client.Models = service.NewModels(cfg.provider)

	return client, nil
}

// Index returns the underlying aspect index, for callers composing their own
// services.
func (c *Client) Index() photo.Index { return c.index }

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Close releases the provider and database resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	if err := c.provider.Close(); err != nil {
		c.logger.Error("failed to close provider", slog.Any("error", err))
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("photolens client closed")
	return nil
}

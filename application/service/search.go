package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/photolens/photolens/domain/photo"
	"github.com/photolens/photolens/infrastructure/imaging"
	"github.com/photolens/photolens/infrastructure/provider"
)

// SearchParams configures a similarity search.
type SearchParams struct {
	// Aspect restricts results to one aspect. Empty searches all aspects.
	Aspect string
	// Limit is the maximum number of results. Non-positive means the
	// default limit.
	Limit int
}

// Search answers similarity queries against the aspect index.
type Search struct {
	index    photo.Index
	provider provider.Provider
	logger   *slog.Logger
}

// NewSearch creates a Search service.
func NewSearch(index photo.Index, p provider.Provider, logger *slog.Logger) *Search {
	if logger == nil {
		logger = slog.Default()
	}
	return &Search{index: index, provider: p, logger: logger}
}

// ByImage describes and embeds the query image, then ranks stored photos by
// distance to the query embedding. Provider failures are terminal; no
// partial results are returned.
func (s *Search) ByImage(ctx context.Context, image []byte, params SearchParams) ([]photo.Result, error) {
	if len(image) == 0 {
		return nil, photo.ErrNoQueryInput
	}

	normalized, err := imaging.Normalize(image)
	if err != nil {
		return nil, err
	}

	description, embedding, err := provider.DescribeAndEmbed(ctx, s.provider, normalized, "")
	if err != nil {
		return nil, err
	}

	s.logger.Debug("query image described", slog.Int("description_len", len(description)))
	return s.query(ctx, embedding, params)
}

// ByImageFile is ByImage for an image on disk.
func (s *Search) ByImageFile(ctx context.Context, path string, params SearchParams) ([]photo.Result, error) {
	image, err := readImageFile(path)
	if err != nil {
		return nil, err
	}
	return s.ByImage(ctx, image, params)
}

// ByText embeds the query text directly and ranks stored photos by distance
// to the text embedding.
func (s *Search) ByText(ctx context.Context, text string, params SearchParams) ([]photo.Result, error) {
	if text == "" {
		return nil, photo.ErrNoQueryInput
	}

	embedding, err := s.provider.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, embedding, params)
}

func (s *Search) query(ctx context.Context, embedding []float64, params SearchParams) ([]photo.Result, error) {
	opts := []photo.QueryOption{photo.WithLimit(params.Limit)}
	if params.Aspect != "" {
		opts = append(opts, photo.WithAspect(params.Aspect))
	}

	results, err := s.index.Query(ctx, embedding, opts...)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("query ranked",
		slog.String("aspect", params.Aspect),
		slog.Int("results", len(results)),
	)
	return results, nil
}

func readImageFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", imaging.ErrUnreadableImage, path, err)
	}
	return raw, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/photolens/photolens/domain/photo"
	"github.com/photolens/photolens/infrastructure/imaging"
	"github.com/photolens/photolens/infrastructure/persistence"
	"github.com/photolens/photolens/infrastructure/provider"
)

// DefaultIndexWorkers is the worker count used when a run names none.
const DefaultIndexWorkers = 4

// IndexParams configures an indexing run over a photo collection.
type IndexParams struct {
	// Dir is the collection root, walked recursively.
	Dir string
	// Aspect labels the records produced by this run. Empty means the
	// default aspect.
	Aspect string
	// Prompt is the describe prompt sent to the vision model. Empty means
	// the built-in prompt.
	Prompt string
	// Concurrency bounds the number of photos processed in parallel.
	Concurrency int
	// SkipExisting skips photos that already have a record for the aspect
	// without contacting the provider.
	SkipExisting bool
}

// ItemStatus classifies the outcome of one photo within a run.
type ItemStatus string

const (
	ItemIndexed ItemStatus = "indexed"
	ItemSkipped ItemStatus = "skipped"
	ItemFailed  ItemStatus = "failed"
)

// ItemResult records the outcome of one photo within an indexing run.
type ItemResult struct {
	PhotoPath string
	Status    ItemStatus
	Err       error
}

// Report aggregates the outcomes of an indexing run. Per-item failures do
// not abort the run; they are collected here.
type Report struct {
	Indexed  int
	Skipped  int
	Failed   int
	Items    []ItemResult
	Duration time.Duration
}

// Indexer runs the describe-embed-store pipeline over photo collections.
type Indexer struct {
	index    photo.Index
	provider provider.Provider
	logger   *slog.Logger
}

// NewIndexer creates an Indexer.
func NewIndexer(index photo.Index, p provider.Provider, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{index: index, provider: p, logger: logger}
}

// Run indexes every image file under params.Dir. Photos are processed by a
// bounded worker pool; a failure on one photo is recorded in the report and
// the run continues. Store failures are fatal and cancel the remaining
// workers.
func (s *Indexer) Run(ctx context.Context, params IndexParams) (Report, error) {
	start := time.Now()

	aspect := params.Aspect
	if aspect == "" {
		aspect = photo.DefaultAspect
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultIndexWorkers
	}

	paths, err := imaging.ScanDirectory(params.Dir)
	if err != nil {
		return Report{}, err
	}

	s.logger.Info("indexing collection",
		slog.String("dir", params.Dir),
		slog.String("aspect", aspect),
		slog.Int("photos", len(paths)),
		slog.Int("workers", concurrency),
	)

	results := make(chan ItemResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			item, err := s.indexOne(gctx, path, aspect, params.Prompt, params.SkipExisting)
			if err != nil {
				// Store and context failures abort the run; everything
				// else is a per-item outcome.
				return err
			}
			results <- item
			return nil
		})
	}

	runErr := g.Wait()
	close(results)

	report := Report{Duration: time.Since(start)}
	for item := range results {
		report.Items = append(report.Items, item)
		switch item.Status {
		case ItemIndexed:
			report.Indexed++
		case ItemSkipped:
			report.Skipped++
		case ItemFailed:
			report.Failed++
		}
	}

	if runErr != nil {
		return report, runErr
	}

	s.logger.Info("indexing run complete",
		slog.Int("indexed", report.Indexed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

// IndexFile indexes a single photo under the given aspect, unconditionally
// replacing any existing record for the key.
func (s *Indexer) IndexFile(ctx context.Context, path, aspect, prompt string) (photo.Record, error) {
	if aspect == "" {
		aspect = photo.DefaultAspect
	}
	if !imaging.IsImagePath(path) {
		return photo.Record{}, fmt.Errorf("%w: %s", imaging.ErrUnreadableImage, path)
	}

	record, err := s.describeStore(ctx, path, aspect, prompt)
	if err != nil {
		return photo.Record{}, err
	}
	return record, nil
}

// indexOne processes one photo and classifies the outcome. The returned
// error is non-nil only for failures that must abort the whole run.
func (s *Indexer) indexOne(ctx context.Context, path, aspect, prompt string, skipExisting bool) (ItemResult, error) {
	if err := ctx.Err(); err != nil {
		return ItemResult{}, err
	}

	if skipExisting {
		exists, err := s.index.Exists(ctx, path, aspect)
		if err != nil {
			return ItemResult{}, err
		}
		if exists {
			s.logger.Debug("photo already indexed", slog.String("path", path), slog.String("aspect", aspect))
			return ItemResult{PhotoPath: path, Status: ItemSkipped}, nil
		}
	}

	_, err := s.describeStore(ctx, path, aspect, prompt)
	if err != nil {
		var storeErr *persistence.StoreError
		if errors.As(err, &storeErr) || ctx.Err() != nil {
			return ItemResult{}, err
		}
		s.logger.Warn("failed to index photo",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return ItemResult{PhotoPath: path, Status: ItemFailed, Err: err}, nil
	}

	return ItemResult{PhotoPath: path, Status: ItemIndexed}, nil
}

// describeStore runs read → normalize → describe → embed → upsert for one
// photo.
func (s *Indexer) describeStore(ctx context.Context, path, aspect, prompt string) (photo.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return photo.Record{}, fmt.Errorf("%w: %s: %v", imaging.ErrUnreadableImage, path, err)
	}

	normalized, err := imaging.Normalize(raw)
	if err != nil {
		return photo.Record{}, fmt.Errorf("%s: %w", path, err)
	}

	description, embedding, err := provider.DescribeAndEmbed(ctx, s.provider, normalized, prompt)
	if err != nil {
		return photo.Record{}, err
	}

	record := photo.NewRecord(path, aspect, description, embedding)
	if err := s.index.Upsert(ctx, record); err != nil {
		return photo.Record{}, err
	}

	s.logger.Debug("indexed photo",
		slog.String("path", path),
		slog.String("aspect", aspect),
		slog.Int("dimension", record.Dimension()),
	)
	return record, nil
}

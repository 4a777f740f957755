package service

import (
	"context"
	"log/slog"

	"github.com/photolens/photolens/domain/photo"
)

// Library manages the stored records directly, without touching the
// provider.
type Library struct {
	index  photo.Index
	logger *slog.Logger
}

// NewLibrary creates a Library service.
func NewLibrary(index photo.Index, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{index: index, logger: logger}
}

// PhotoPaths returns the distinct photo paths across all aspects.
func (s *Library) PhotoPaths(ctx context.Context) ([]string, error) {
	return s.index.PhotoPaths(ctx)
}

// Count returns the number of stored records.
func (s *Library) Count(ctx context.Context) (int64, error) {
	return s.index.Count(ctx)
}

// Exists reports whether a record exists for (photoPath, aspectName).
// An empty aspect means the default aspect.
func (s *Library) Exists(ctx context.Context, photoPath, aspectName string) (bool, error) {
	if aspectName == "" {
		aspectName = photo.DefaultAspect
	}
	return s.index.Exists(ctx, photoPath, aspectName)
}

// Delete removes the record for (photoPath, aspectName), or every record
// sharing photoPath when aspectName is empty. Returns the number of records
// removed; zero means not found.
func (s *Library) Delete(ctx context.Context, photoPath, aspectName string) (int64, error) {
	removed, err := s.index.Delete(ctx, photoPath, aspectName)
	if err != nil {
		return 0, err
	}
	s.logger.Info("deleted records",
		slog.String("path", photoPath),
		slog.String("aspect", aspectName),
		slog.Int64("removed", removed),
	)
	return removed, nil
}

// Clear deletes all stored records.
func (s *Library) Clear(ctx context.Context) error {
	if err := s.index.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("cleared index")
	return nil
}

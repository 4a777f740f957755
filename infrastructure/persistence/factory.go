package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/photolens/photolens/domain/photo"
	"github.com/photolens/photolens/internal/database"
)

// NewIndex returns the photo.Index implementation matching the database
// driver. SQLite stores embeddings as JSON and ranks in process; PostgreSQL
// requires the pgvector extension and ranks in the database, which needs the
// embedding dimension up front.
func NewIndex(ctx context.Context, db database.Database, dimension int, logger *slog.Logger) (photo.Index, error) {
	switch db.Driver() {
	case database.DriverSQLite:
		return NewSQLiteIndex(db, logger), nil
	case database.DriverPostgres:
		return NewPgVectorIndex(ctx, db, dimension, logger)
	default:
		return nil, fmt.Errorf("no index backend for driver %q", db.Driver())
	}
}

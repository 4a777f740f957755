package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/photolens/photolens/domain/photo"
	"github.com/photolens/photolens/internal/database"
)

// pgTableName is the table holding photo records on the PostgreSQL backend.
const pgTableName = "photo_records"

// SQL specific to pgvector (extension, index, catalog lookups).
const (
	pgvCreateExtension = `CREATE EXTENSION IF NOT EXISTS vector`

	pgvCreateIndex = `
CREATE INDEX IF NOT EXISTS photo_records_embedding_idx
ON photo_records
USING ivfflat (embedding vector_cosine_ops)
WITH (lists = 100)`

	pgvCheckDimension = `
SELECT a.atttypmod as dimension
FROM pg_attribute a
JOIN pg_class c ON a.attrelid = c.oid
WHERE c.relname = 'photo_records'
AND a.attname = 'embedding'`
)

// ErrPgvectorInitializationFailed indicates pgvector initialization failed.
var ErrPgvectorInitializationFailed = errors.New("failed to initialize pgvector index")

// pgPhotoEntity is the GORM model for a photo record on PostgreSQL.
type pgPhotoEntity struct {
	EntryID     string            `gorm:"column:entry_id;primaryKey"`
	PhotoPath   string            `gorm:"column:photo_path"`
	AspectName  string            `gorm:"column:aspect_name"`
	Description string            `gorm:"column:description"`
	Embedding   database.PgVector `gorm:"column:embedding"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`
}

// TableName implements the GORM table name convention.
func (pgPhotoEntity) TableName() string { return pgTableName }

// PgVectorIndex implements photo.Index on PostgreSQL with the pgvector
// extension. Ranking happens in the database via the cosine distance
// operator, so only the top-k rows travel back.
type PgVectorIndex struct {
	db        database.Database
	dimension int
	logger    *slog.Logger
}

// NewPgVectorIndex creates a PgVectorIndex, eagerly initializing the
// extension, table and ANN index, and verifying the configured dimension
// against the existing schema.
func NewPgVectorIndex(ctx context.Context, db database.Database, dimension int, logger *slog.Logger) (*PgVectorIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d",
			ErrPgvectorInitializationFailed, dimension)
	}

	rawDB := db.Session(ctx)

	if err := rawDB.Exec(pgvCreateExtension).Error; err != nil {
		return nil, errors.Join(ErrPgvectorInitializationFailed, fmt.Errorf("create extension: %w", err))
	}

	// Dynamic dimension requires raw SQL; AutoMigrate cannot express
	// VECTOR(n) columns.
	createTableSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    entry_id VARCHAR(64) PRIMARY KEY,
    photo_path TEXT NOT NULL,
    aspect_name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    embedding VECTOR(%d) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, pgTableName, dimension)
	if err := rawDB.Exec(createTableSQL).Error; err != nil {
		return nil, errors.Join(ErrPgvectorInitializationFailed, fmt.Errorf("create table: %w", err))
	}

	if err := rawDB.Exec(`CREATE INDEX IF NOT EXISTS photo_records_path_idx ON photo_records (photo_path)`).Error; err != nil {
		return nil, errors.Join(ErrPgvectorInitializationFailed, fmt.Errorf("create path index: %w", err))
	}

	// ANN index creation can fail when it already exists with different
	// parameters; brute-force ranking still works without it.
	if err := rawDB.Exec(pgvCreateIndex).Error; err != nil {
		logger.Warn("failed to create ivfflat index (may already exist)", "error", err)
	}

	var dbDimension int
	result := rawDB.Raw(pgvCheckDimension).Scan(&dbDimension)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.Join(ErrPgvectorInitializationFailed, fmt.Errorf("check dimension: %w", result.Error))
	}
	if result.RowsAffected > 0 && dbDimension != dimension {
		return nil, fmt.Errorf("%w: database has %d, configured %d",
			ErrDimensionMismatch, dbDimension, dimension)
	}

	return &PgVectorIndex{db: db, dimension: dimension, logger: logger}, nil
}

// Upsert inserts the record or atomically replaces the record with the same
// entry ID.
func (s *PgVectorIndex) Upsert(ctx context.Context, record photo.Record) error {
	if record.Dimension() == 0 {
		return photo.ErrEmptyEmbedding
	}
	if record.Dimension() != s.dimension {
		return fmt.Errorf("%w: store has %d, got %d",
			ErrDimensionMismatch, s.dimension, record.Dimension())
	}

	entity := pgPhotoEntity{
		EntryID:     record.EntryID(),
		PhotoPath:   record.PhotoPath(),
		AspectName:  record.AspectName(),
		Description: record.Description(),
		Embedding:   database.NewPgVector(record.Embedding()),
		CreatedAt:   record.CreatedAt(),
		UpdatedAt:   record.UpdatedAt(),
	}

	err := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "entry_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"photo_path", "aspect_name", "description", "embedding", "updated_at",
		}),
	}).Create(&entity).Error
	if err != nil {
		return NewStoreError("upsert", err)
	}
	return nil
}

// Query ranks records by the pgvector cosine distance operator and returns
// at most the configured limit, ascending by distance.
func (s *PgVectorIndex) Query(ctx context.Context, embedding []float64, opts ...photo.QueryOption) ([]photo.Result, error) {
	if len(embedding) == 0 {
		return nil, photo.ErrEmptyEmbedding
	}

	cfg := photo.NewQueryConfig(opts...)
	queryVector := database.NewPgVector(embedding).String()

	tx := s.db.Session(ctx).Table(pgTableName).
		Select("photo_path, aspect_name, description, embedding <=> ? as distance", queryVector)
	if cfg.Aspect() != "" {
		tx = tx.Where("aspect_name = ?", cfg.Aspect())
	}
	tx = tx.Order("distance ASC").Limit(cfg.Limit())

	var rows []struct {
		PhotoPath   string  `gorm:"column:photo_path"`
		AspectName  string  `gorm:"column:aspect_name"`
		Description string  `gorm:"column:description"`
		Distance    float64 `gorm:"column:distance"`
	}
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, NewStoreError("query", err)
	}

	results := make([]photo.Result, len(rows))
	for i, row := range rows {
		results[i] = photo.NewResult(row.PhotoPath, row.AspectName, row.Distance, row.Description)
	}
	return results, nil
}

// Delete removes the record for the key, or every record sharing photoPath
// when aspectName is empty. Returns the number of records removed.
func (s *PgVectorIndex) Delete(ctx context.Context, photoPath, aspectName string) (int64, error) {
	db := s.db.Session(ctx).Where("photo_path = ?", photoPath)
	if aspectName != "" {
		db = db.Where("aspect_name = ?", aspectName)
	}

	result := db.Delete(&pgPhotoEntity{})
	if result.Error != nil {
		return 0, NewStoreError("delete", result.Error)
	}
	return result.RowsAffected, nil
}

// Exists reports whether a record exists for (photoPath, aspectName).
func (s *PgVectorIndex) Exists(ctx context.Context, photoPath, aspectName string) (bool, error) {
	var count int64
	err := s.db.Session(ctx).
		Model(&pgPhotoEntity{}).
		Where("entry_id = ?", photo.EntryID(photoPath, aspectName)).
		Count(&count).Error
	if err != nil {
		return false, NewStoreError("exists", err)
	}
	return count > 0, nil
}

// PhotoPaths returns the distinct photo paths across all aspects.
func (s *PgVectorIndex) PhotoPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := s.db.Session(ctx).
		Model(&pgPhotoEntity{}).
		Distinct().
		Order("photo_path").
		Pluck("photo_path", &paths).Error
	if err != nil {
		return nil, NewStoreError("photo_paths", err)
	}
	return paths, nil
}

// Count returns the number of stored records.
func (s *PgVectorIndex) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.Session(ctx).Model(&pgPhotoEntity{}).Count(&count).Error; err != nil {
		return 0, NewStoreError("count", err)
	}
	return count, nil
}

// Clear deletes all records. The index remains usable afterwards.
func (s *PgVectorIndex) Clear(ctx context.Context) error {
	err := s.db.Session(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&pgPhotoEntity{}).Error
	if err != nil {
		return NewStoreError("clear", err)
	}
	return nil
}

// Ensure PgVectorIndex implements the interface.
var _ photo.Index = (*PgVectorIndex)(nil)

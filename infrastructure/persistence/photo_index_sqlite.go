package persistence

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/photolens/photolens/domain/photo"
	"github.com/photolens/photolens/internal/database"
)

// sqliteTableName is the table holding photo records on the SQLite backend.
const sqliteTableName = "photo_records"

// Float64Slice is a custom type for JSON serialization of []float64 in
// SQLite columns.
type Float64Slice []float64

// Scan implements sql.Scanner for reading JSON from SQLite.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer for writing JSON to SQLite.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// sqlitePhotoEntity is the GORM model for a photo record on SQLite. The
// embedding lives in the same row as the record, so the similarity index
// and the record mapping cannot diverge.
type sqlitePhotoEntity struct {
	EntryID     string       `gorm:"column:entry_id;primaryKey"`
	PhotoPath   string       `gorm:"column:photo_path;index"`
	AspectName  string       `gorm:"column:aspect_name;index"`
	Description string       `gorm:"column:description"`
	Embedding   Float64Slice `gorm:"column:embedding;type:json"`
	CreatedAt   time.Time    `gorm:"column:created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at"`
}

// TableName implements the GORM table name convention.
func (sqlitePhotoEntity) TableName() string { return sqliteTableName }

func (e sqlitePhotoEntity) toDomain() photo.Record {
	return photo.ReconstructRecord(
		e.PhotoPath, e.AspectName, e.Description,
		e.Embedding, e.CreatedAt, e.UpdatedAt,
	)
}

// SQLiteIndex implements photo.Index on SQLite. Embeddings are stored as
// JSON and ranked by cosine distance in-process; fine for personal photo
// collections, where record counts stay small.
type SQLiteIndex struct {
	db     database.Database
	logger *slog.Logger

	// dimension of the stored embeddings; 0 until the first record is
	// seen. Guarded by mu because indexing workers upsert concurrently.
	dimension int
	mu        sync.Mutex

	initialized bool
	initMu      sync.Mutex
}

// NewSQLiteIndex creates a new SQLiteIndex.
func NewSQLiteIndex(db database.Database, logger *slog.Logger) *SQLiteIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteIndex{db: db, logger: logger}
}

func (s *SQLiteIndex) initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized {
		return nil
	}

	if err := s.db.Session(ctx).AutoMigrate(&sqlitePhotoEntity{}); err != nil {
		return NewStoreError("initialize", err)
	}

	// Adopt the dimension of whatever is already stored.
	var existing sqlitePhotoEntity
	err := s.db.Session(ctx).Limit(1).Find(&existing).Error
	if err != nil {
		return NewStoreError("initialize", err)
	}
	if len(existing.Embedding) > 0 {
		s.mu.Lock()
		s.dimension = len(existing.Embedding)
		s.mu.Unlock()
	}

	s.initialized = true
	return nil
}

// checkDimension enforces uniform embedding dimensionality across the store.
// The first embedding seen fixes the dimension.
func (s *SQLiteIndex) checkDimension(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = n
		return nil
	}
	if s.dimension != n {
		return fmt.Errorf("%w: store has %d, got %d", ErrDimensionMismatch, s.dimension, n)
	}
	return nil
}

// Upsert inserts the record or atomically replaces the record with the same
// entry ID. Concurrent upserts to the same key serialize at the database.
func (s *SQLiteIndex) Upsert(ctx context.Context, record photo.Record) error {
	if record.Dimension() == 0 {
		return photo.ErrEmptyEmbedding
	}
	if err := s.initialize(ctx); err != nil {
		return err
	}
	if err := s.checkDimension(record.Dimension()); err != nil {
		return err
	}

	entity := sqlitePhotoEntity{
		EntryID:     record.EntryID(),
		PhotoPath:   record.PhotoPath(),
		AspectName:  record.AspectName(),
		Description: record.Description(),
		Embedding:   Float64Slice(record.Embedding()),
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

// Query ranks all records (optionally restricted to one aspect) by ascending
// cosine distance to the embedding and returns at most the configured limit.
func (s *SQLiteIndex) Query(ctx context.Context, embedding []float64, opts ...photo.QueryOption) ([]photo.Result, error) {
	if len(embedding) == 0 {
		return nil, photo.ErrEmptyEmbedding
	}
	if err := s.initialize(ctx); err != nil {
		return nil, err
	}

	cfg := photo.NewQueryConfig(opts...)

	db := s.db.Session(ctx)
	if cfg.Aspect() != "" {
		db = db.Where("aspect_name = ?", cfg.Aspect())
	}

	var entities []sqlitePhotoEntity
	if err := db.Find(&entities).Error; err != nil {
		return nil, NewStoreError("query", err)
	}

	matches := rankNearest(embedding, entities, cfg.Limit())

	results := make([]photo.Result, len(matches))
	for i, m := range matches {
		results[i] = photo.NewResult(
			m.entity.PhotoPath, m.entity.AspectName, m.distance, m.entity.Description,
		)
	}
	return results, nil
}

// Delete removes the record for the key, or every record sharing photoPath
// when aspectName is empty. Returns the number of records removed.
func (s *SQLiteIndex) Delete(ctx context.Context, photoPath, aspectName string) (int64, error) {
	if err := s.initialize(ctx); err != nil {
		return 0, err
	}

	db := s.db.Session(ctx).Where("photo_path = ?", photoPath)
	if aspectName != "" {
		db = db.Where("aspect_name = ?", aspectName)
	}

	result := db.Delete(&sqlitePhotoEntity{})
	if result.Error != nil {
		return 0, NewStoreError("delete", result.Error)
	}
	return result.RowsAffected, nil
}

// Exists reports whether a record exists for (photoPath, aspectName).
func (s *SQLiteIndex) Exists(ctx context.Context, photoPath, aspectName string) (bool, error) {
	if err := s.initialize(ctx); err != nil {
		return false, err
	}

	var count int64
	err := s.db.Session(ctx).
		Model(&sqlitePhotoEntity{}).
		Where("entry_id = ?", photo.EntryID(photoPath, aspectName)).
		Count(&count).Error
	if err != nil {
		return false, NewStoreError("exists", err)
	}
	return count > 0, nil
}

// PhotoPaths returns the distinct photo paths across all aspects.
func (s *SQLiteIndex) PhotoPaths(ctx context.Context) ([]string, error) {
	if err := s.initialize(ctx); err != nil {
		return nil, err
	}

	var paths []string
	err := s.db.Session(ctx).
		Model(&sqlitePhotoEntity{}).
		Distinct().
		Order("photo_path").
		Pluck("photo_path", &paths).Error
	if err != nil {
		return nil, NewStoreError("photo_paths", err)
	}
	return paths, nil
}

// Count returns the number of stored records.
func (s *SQLiteIndex) Count(ctx context.Context) (int64, error) {
	if err := s.initialize(ctx); err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.Session(ctx).Model(&sqlitePhotoEntity{}).Count(&count).Error; err != nil {
		return 0, NewStoreError("count", err)
	}
	return count, nil
}

// Clear deletes all records. The index remains usable afterwards, and the
// next upsert fixes a fresh dimension.
func (s *SQLiteIndex) Clear(ctx context.Context) error {
	if err := s.initialize(ctx); err != nil {
		return err
	}

	err := s.db.Session(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&sqlitePhotoEntity{}).Error
	if err != nil {
		return NewStoreError("clear", err)
	}

	s.mu.Lock()
	s.dimension = 0
	s.mu.Unlock()
	return nil
}

// Ensure SQLiteIndex implements the interface.
var _ photo.Index = (*SQLiteIndex)(nil)

// Package photo provides the domain types for the aspect index: photo
// records keyed by (photo path, aspect name), similarity search results,
// and the index contract implemented by the persistence layer.
package photo

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultAspect is the aspect name used when the caller does not name one.
const DefaultAspect = "default"

// EntryID derives the stable record identifier for a (photo path, aspect
// name) pair. The same pair always yields the same ID, so repeated indexing
// of a photo under one aspect addresses one record.
func EntryID(photoPath, aspectName string) string {
	h := sha256.New()
	h.Write([]byte(photoPath))
	h.Write([]byte{0})
	h.Write([]byte(aspectName))
	return hex.EncodeToString(h.Sum(nil))
}

// Record represents one indexed photo under one aspect. A photo indexed
// under several aspects produces several independent records.
type Record struct {
	entryID     string
	photoPath   string
	aspectName  string
	description string
	embedding   []float64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewRecord creates a Record for the given key, description and embedding.
func NewRecord(photoPath, aspectName, description string, embedding []float64) Record {
	now := time.Now()
	vec := make([]float64, len(embedding))
	copy(vec, embedding)

	return Record{
		entryID:     EntryID(photoPath, aspectName),
		photoPath:   photoPath,
		aspectName:  aspectName,
		description: description,
		embedding:   vec,
		createdAt:   now,
		updatedAt:   now,
	}
}

// ReconstructRecord reconstructs a Record from persistence.
func ReconstructRecord(
	photoPath, aspectName, description string,
	embedding []float64,
	createdAt, updatedAt time.Time,
) Record {
	vec := make([]float64, len(embedding))
	copy(vec, embedding)

	return Record{
		entryID:     EntryID(photoPath, aspectName),
		photoPath:   photoPath,
		aspectName:  aspectName,
		description: description,
		embedding:   vec,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// EntryID returns the stable identifier derived from the composite key.
func (r Record) EntryID() string { return r.entryID }

// PhotoPath returns the path of the indexed photo.
func (r Record) PhotoPath() string { return r.photoPath }

// AspectName returns the aspect under which the photo was described.
func (r Record) AspectName() string { return r.aspectName }

// Description returns the generated description text.
func (r Record) Description() string { return r.description }

// Embedding returns the embedding vector (copy).
func (r Record) Embedding() []float64 {
	vec := make([]float64, len(r.embedding))
	copy(vec, r.embedding)
	return vec
}

// Dimension returns the embedding dimensionality.
func (r Record) Dimension() int { return len(r.embedding) }

// CreatedAt returns the creation timestamp.
func (r Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-update timestamp.
func (r Record) UpdatedAt() time.Time { return r.updatedAt }

package photo

import "errors"

// ErrNoQueryInput indicates a search was requested with neither an image nor
// a text query. This is a caller programming error, not a runtime condition.
var ErrNoQueryInput = errors.New("photo: query requires an image or a text")

// ErrEmptyEmbedding indicates an upsert or query was attempted with a
// zero-length embedding vector.
var ErrEmptyEmbedding = errors.New("photo: empty embedding")

package photo

import "context"

// DefaultQueryLimit is the result limit applied when a query names none.
const DefaultQueryLimit = 10

// Index is the aspect index: a persistent map from (photo path, aspect name)
// to Record with a similarity ranking capability over the embedding field.
//
// Implementations must keep the record and its vector in a single unit so the
// two can never diverge, must treat Upsert as an atomic whole-record
// replacement, and must serialize concurrent upserts to the same key
// (last-writer-wins). Queries are read-only and may run concurrently with
// writes; they observe an unspecified point-in-time snapshot.
type Index interface {
	// Upsert inserts the record, or replaces the existing record with the
	// same entry ID wholesale. Idempotent for identical arguments.
	Upsert(ctx context.Context, record Record) error

	// Query ranks stored records by ascending distance to the embedding and
	// returns at most the configured limit. Fewer matches than the limit is
	// not an error; no matches yields an empty slice.
	Query(ctx context.Context, embedding []float64, opts ...QueryOption) ([]Result, error)

	// Delete removes the record for (photoPath, aspectName), or every record
	// sharing photoPath when aspectName is empty. Returns the number of
	// records removed; zero means not found and is not an error.
	Delete(ctx context.Context, photoPath, aspectName string) (int64, error)

	// Exists reports whether a record exists for (photoPath, aspectName).
	Exists(ctx context.Context, photoPath, aspectName string) (bool, error)

	// PhotoPaths returns the distinct photo paths across all aspects.
	PhotoPaths(ctx context.Context) ([]string, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Clear deletes all records. The index remains usable afterwards.
	Clear(ctx context.Context) error
}

// QueryOption configures an index query.
type QueryOption func(*QueryConfig)

// QueryConfig holds query parameters built from options.
type QueryConfig struct {
	aspect string
	limit  int
}

// NewQueryConfig builds a QueryConfig from options, applying defaults.
func NewQueryConfig(opts ...QueryOption) QueryConfig {
	cfg := QueryConfig{limit: DefaultQueryLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithAspect restricts results to records whose aspect name equals name.
// An empty name leaves the query unfiltered.
func WithAspect(name string) QueryOption {
	return func(c *QueryConfig) { c.aspect = name }
}

// WithLimit sets the maximum number of results. The limit is clamped by the
// index to the matching record count, never rejected.
func WithLimit(n int) QueryOption {
	return func(c *QueryConfig) {
		if n > 0 {
			c.limit = n
		}
	}
}

// Aspect returns the aspect filter, or empty for no filter.
func (c QueryConfig) Aspect() string { return c.aspect }

// Limit returns the result limit.
func (c QueryConfig) Limit() int { return c.limit }

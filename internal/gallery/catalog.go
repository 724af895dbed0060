package gallery

import "photofind/internal/model"

// Catalog provides an interface for the persistent image catalog.
// Implementations must make each write durable before returning.
type Catalog interface {
	// Image operations

	// FindByPath returns the record with an exact path match, or nil if
	// the path has never been indexed.
	FindByPath(path string) (*model.ImageRecord, error)

	// Upsert inserts a new row for the path or, on conflict, overwrites
	// every field except the surrogate id. The deleted flag is always
	// cleared, so upserting a soft-deleted path revives it.
	Upsert(path string, mtime float64, caption string, embedding []byte, tags model.TagSet) error

	// UpdateTags overwrites only the mtime and the seven tag columns,
	// leaving caption, embedding and the deleted flag untouched.
	UpdateTags(path string, mtime float64, tags model.TagSet) error

	// MarkDeleted sets the soft-delete flag for each path. Paths that are
	// not in the catalog are silently skipped.
	MarkDeleted(paths []string) error

	// QueryCandidates returns every non-deleted row with a non-nil
	// embedding that satisfies the filter conditions, in scan order.
	QueryCandidates(filters model.SearchFilters) ([]*model.ImageRecord, error)

	// CountImages returns the number of rows, optionally including
	// soft-deleted ones.
	CountImages(includeDeleted bool) (int64, error)

	// EmbeddingDim returns the dimension of any stored embedding, or 0
	// when the catalog holds no embeddings yet.
	EmbeddingDim() (int, error)

	// Index run tracking

	// CreateIndexRun records the start of a catalog-mutating run.
	CreateIndexRun(run *model.IndexRun) error

	// FinishIndexRun stamps the finish time and final status of a run.
	FinishIndexRun(id string, status string) error

	// ListIndexRuns returns the most recent runs, newest first.
	ListIndexRuns(limit int) ([]*model.IndexRun, error)

	// Maintenance

	// CheckSchema verifies the store's schema is at the version this
	// binary expects; non-nil means the catalog needs migration or a
	// newer binary.
	CheckSchema() error

	// Path returns the location of the backing store, for display.
	Path() string

	// Close closes the underlying database connection.
	Close() error
}

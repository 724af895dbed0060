package model

import "time"

// TagState is a tri-state boolean for image tags. Rows indexed before
// tagging existed carry TagUnknown, which is distinct from an evaluated
// TagFalse.
type TagState int8

const (
	TagUnknown TagState = iota
	TagFalse
	TagTrue
)

// Known reports whether the tag has been evaluated.
func (t TagState) Known() bool { return t != TagUnknown }

// Bool returns the evaluated value; false for TagUnknown.
func (t TagState) Bool() bool { return t == TagTrue }

// TagOf converts an evaluated boolean into a TagState.
func TagOf(b bool) TagState {
	if b {
		return TagTrue
	}
	return TagFalse
}

// TagSet holds the seven semantic tag attributes of an image.
type TagSet struct {
	HasPeople    TagState
	HasFaces     TagState
	HasText      TagState
	IsIndoor     TagState
	IsOutdoor    TagState
	IsDocument   TagState
	IsScreenshot TagState
}

// ImageRecord is one row of the catalog, keyed by absolute path.
type ImageRecord struct {
	ID        int64
	Path      string  // absolute path; unique, upsert key
	MTime     float64 // last-observed modification time, seconds since epoch
	Caption   string  // empty until first successful process
	Embedding []byte  // little-endian float32 blob; nil until first successful process
	Deleted   bool
	Tags      TagSet
}

// Environment restricts search results to indoor or outdoor scenes.
type Environment string

const (
	EnvAny     Environment = ""
	EnvIndoor  Environment = "Indoor"
	EnvOutdoor Environment = "Outdoor"
)

// SearchFilters are boolean toggles applied on top of similarity ranking.
// Exclude* filters also match rows whose tag was never evaluated; Only*
// filters require an evaluated true.
type SearchFilters struct {
	ExcludePeople   bool
	ExcludeFaces    bool
	ExcludeText     bool
	OnlyDocuments   bool
	OnlyScreenshots bool
	Environment     Environment
}

// ScoredResult is one ranked search hit.
type ScoredResult struct {
	Score   float64
	ID      int64
	Path    string
	Caption string
}

// IndexFailure records a single file that could not be indexed.
type IndexFailure struct {
	Path string
	Err  error
}

// IndexSummary reports the outcome of an indexing run. Partial completion
// is expected: failed files are collected here, not fatal.
type IndexSummary struct {
	Indexed  int // files fully processed or tag-rescanned
	Skipped  int // files left untouched by the decision rules
	Failures []IndexFailure
}

// ImageFile is a discovered image on disk.
type ImageFile struct {
	Path  string
	MTime float64
}

// IndexRun is one catalog-mutating CLI invocation, recorded for history.
type IndexRun struct {
	ID         string // UUID
	Operation  string // e.g. "IndexFolder", "MarkDeleted"
	Parameters string
	StartedAt  time.Time
	FinishedAt *time.Time // nil while the run is in flight
	Status     string     // "success" or "error"
}

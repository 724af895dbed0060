package app

import "github.com/google/uuid"

// Run tracks a CLI invocation that may mutate the catalog. Runs are
// created in memory; only catalog-mutating commands persist them to the
// index_runs table.
type Run struct {
	ID         string
	Operation  string
	Parameters string
	Status     string // "success" or "error"

	persisted bool
}

// NewRun creates a new in-memory run with a fresh id. The same id is
// used for the log stream and, if the run is persisted, the history row.
func NewRun(operation, parameters string) *Run {
	return &Run{
		ID:         uuid.New().String(),
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this run has been saved to the catalog.
func (r *Run) Persisted() bool {
	return r.persisted
}

// Fail marks the run's final status as error.
func (r *Run) Fail() {
	r.Status = "error"
}

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photofind/internal/catalog"
	"photofind/internal/config"
	"photofind/internal/gallery"
	"photofind/internal/imgio"
	"photofind/internal/model"
	"photofind/internal/provider"
)

// App is the application layer between the CLI and the gallery Service.
// It constructs all dependencies from config, exposes high-level
// operations that accept raw string paths, and manages the catalog
// lifecycle on Close.
type App struct {
	cfg     *config.Config
	catalog gallery.Catalog
	service *gallery.Service
	run     *Run
	logFile *os.File
}

// Counts summarizes the catalog for the status command.
type Counts struct {
	Total   int64 // every row, soft-deleted ones included
	Active  int64
	Deleted int64
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "IndexFolder",
// "Search"). The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	cat, err := catalog.NewCatalogFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating catalog: %w", err)
	}

	prov, err := provider.NewProviderFromConfig(ctx, cfg.Provider)
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	source := imgio.NewOSImageSource(cfg.Scanner.MaxImageSide, cfg.Scanner.JPEGQuality, cfg.Scanner.Ignore)

	run := NewRun(operation, "")
	logger, logFile, err := newLogger(cfg.LogDir, run.ID)
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := gallery.NewService(cat, prov, source, &slogAdapter{l: logger})

	return &App{
		cfg:     cfg,
		catalog: cat,
		service: svc,
		run:     run,
		logFile: logFile,
	}, nil
}

// persistRun saves the run to the catalog history. This should only be
// called for catalog-mutating commands.
func (a *App) persistRun(parameters string) error {
	if a.run.Persisted() {
		return nil // already persisted
	}
	a.run.Parameters = parameters
	err := a.catalog.CreateIndexRun(&model.IndexRun{
		ID:         a.run.ID,
		Operation:  a.run.Operation,
		Parameters: parameters,
		StartedAt:  time.Now().UTC(),
		Status:     a.run.Status,
	})
	if err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	a.run.persisted = true
	return nil
}

// Index resolves the given folder and indexes every supported image in
// it. Per-file failures are reported in the summary, not as an error.
func (a *App) Index(ctx context.Context, rawFolder string, opts gallery.IndexOptions) (*model.IndexSummary, error) {
	folder, err := filepath.Abs(rawFolder)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if err := a.persistRun(folder); err != nil {
		return nil, err
	}

	summary, err := a.service.IndexFolder(ctx, folder, opts)
	if err != nil {
		a.run.Fail()
		return nil, err
	}
	if len(summary.Failures) > 0 {
		a.run.Fail()
	}
	return summary, nil
}

// Search embeds the query and returns the top matches, best first.
func (a *App) Search(ctx context.Context, query string, limit int, filters model.SearchFilters) ([]model.ScoredResult, error) {
	return a.service.Search(ctx, query, limit, filters)
}

// Remove resolves the given paths and soft-deletes them from the
// catalog. Files on disk are never touched. Returns the resolved paths.
func (a *App) Remove(rawPaths []string) ([]string, error) {
	paths := make([]string, 0, len(rawPaths))
	for _, p := range rawPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
		paths = append(paths, abs)
	}

	if err := a.persistRun(fmt.Sprintf("%d path(s)", len(paths))); err != nil {
		return nil, err
	}
	if err := a.service.MarkDeleted(paths); err != nil {
		a.run.Fail()
		return nil, err
	}
	return paths, nil
}

// Status returns row counts for the catalog.
func (a *App) Status() (*Counts, error) {
	total, err := a.catalog.CountImages(true)
	if err != nil {
		return nil, fmt.Errorf("counting images: %w", err)
	}
	active, err := a.catalog.CountImages(false)
	if err != nil {
		return nil, fmt.Errorf("counting active images: %w", err)
	}
	return &Counts{Total: total, Active: active, Deleted: total - active}, nil
}

// CatalogPath returns the location of the catalog in use.
func (a *App) CatalogPath() string {
	return a.catalog.Path()
}

// CheckSchema reports whether the catalog schema matches this binary.
func (a *App) CheckSchema() error {
	return a.catalog.CheckSchema()
}

// History returns the most recent catalog-mutating runs, newest first.
func (a *App) History(limit int) ([]*model.IndexRun, error) {
	return a.catalog.ListIndexRuns(limit)
}

// Close finalizes the run record (if persisted) and closes all resources.
func (a *App) Close() error {
	var firstErr error

	if a.run.Persisted() {
		if err := a.catalog.FinishIndexRun(a.run.ID, a.run.Status); err != nil {
			firstErr = fmt.Errorf("finishing run: %w", err)
		}
	}

	if err := a.catalog.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing catalog: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

package gallery

import (
	"context"
	"fmt"

	"photofind/internal/model"
	"photofind/internal/vector"
)

// IndexOptions control which already-indexed rows a run touches.
// Both flags may be set; RescanTags wins (it is checked first).
type IndexOptions struct {
	// RescanDeleted limits the run to rows currently marked deleted,
	// reprocessing them in full. New files are skipped.
	RescanDeleted bool

	// RescanTags re-runs captioning and tagging on already-indexed,
	// non-deleted rows without recomputing embeddings. Cheap backfill for
	// catalogs built before tagging existed. New files are skipped.
	RescanTags bool
}

// IndexFolder brings the catalog in sync with the image files under
// folder. Per-file decision, first matching rule wins:
//
//  1. unknown path + either rescan flag set: skip
//  2. known, RescanTags, not deleted: caption+tags only, keep embedding
//  3. known, RescanDeleted, not deleted: skip
//  4. known, no flags, not deleted, stored mtime == current mtime: skip
//  5. otherwise: full process (caption, tags, embed, upsert)
//
// The mtime comparison is exact float equality, matching how mtimes are
// stored; filesystems with coarser timestamp resolution can therefore
// miss changes that preserve the observed mtime.
//
// Failures are per-file: they are logged, collected into the returned
// summary, and never abort the walk.
func (s *Service) IndexFolder(ctx context.Context, folder string, opts IndexOptions) (*model.IndexSummary, error) {
	if err := s.checkDimensions(); err != nil {
		return nil, err
	}

	files, err := s.source.FindImages(folder)
	if err != nil {
		return nil, fmt.Errorf("finding images: %w", err)
	}

	summary := &model.IndexSummary{}
	for _, f := range files {
		processed, err := s.indexOne(ctx, f, opts)
		if err != nil {
			s.logger.Warn("failed indexing image", "path", f.Path, "error", err)
			summary.Failures = append(summary.Failures, model.IndexFailure{Path: f.Path, Err: err})
			continue
		}
		if processed {
			summary.Indexed++
		} else {
			summary.Skipped++
		}
	}

	s.logger.Info("index run finished",
		"folder", folder,
		"indexed", summary.Indexed,
		"skipped", summary.Skipped,
		"failed", len(summary.Failures),
	)
	return summary, nil
}

// indexOne applies the decision table to a single discovered file.
// Returns true if the catalog was written.
func (s *Service) indexOne(ctx context.Context, f model.ImageFile, opts IndexOptions) (bool, error) {
	existing, err := s.catalog.FindByPath(f.Path)
	if err != nil {
		return false, fmt.Errorf("finding image: %w", err)
	}

	if existing != nil {
		if opts.RescanTags && !existing.Deleted {
			return true, s.rescanTags(ctx, f)
		}
		if opts.RescanDeleted && !existing.Deleted {
			return false, nil
		}
		if !opts.RescanDeleted && !existing.Deleted && existing.MTime == f.MTime {
			return false, nil // unchanged, already indexed
		}
	} else if opts.RescanDeleted || opts.RescanTags {
		return false, nil // rescans only touch already-indexed items
	}

	return true, s.processFull(ctx, f)
}

// rescanTags recomputes caption and tags for an indexed row, updating
// only the tag columns and mtime. The stored embedding is untouched.
func (s *Service) rescanTags(ctx context.Context, f model.ImageFile) error {
	imageBytes, err := s.source.LoadBounded(f.Path)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}

	_, tags, err := s.provider.CaptionAndTags(ctx, imageBytes)
	if err != nil {
		return fmt.Errorf("captioning image: %w", err)
	}

	if err := s.catalog.UpdateTags(f.Path, f.MTime, tags); err != nil {
		return fmt.Errorf("updating tags: %w", err)
	}

	s.logger.Debug("tags rescanned", "path", f.Path)
	return nil
}

// processFull runs the complete pipeline for one file: bounded load,
// caption+tags, caption embedding, upsert.
func (s *Service) processFull(ctx context.Context, f model.ImageFile) error {
	imageBytes, err := s.source.LoadBounded(f.Path)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}

	caption, tags, err := s.provider.CaptionAndTags(ctx, imageBytes)
	if err != nil {
		return fmt.Errorf("captioning image: %w", err)
	}

	emb, err := s.provider.EmbedText(ctx, caption)
	if err != nil {
		return fmt.Errorf("embedding caption: %w", err)
	}

	if err := s.catalog.Upsert(f.Path, f.MTime, caption, vector.Encode(emb), tags); err != nil {
		return fmt.Errorf("upserting image: %w", err)
	}

	s.logger.Debug("image indexed", "path", f.Path)
	return nil
}

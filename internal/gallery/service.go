package gallery

import "fmt"

// Service is the orchestration layer that coordinates the catalog, the
// AI provider and the filesystem to index folders and answer queries.
type Service struct {
	catalog  Catalog
	provider Provider
	source   ImageSource
	logger   Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(catalog Catalog, provider Provider, source ImageSource, logger Logger) *Service {
	return &Service{
		catalog:  catalog,
		provider: provider,
		source:   source,
		logger:   logger,
	}
}

// MarkDeleted soft-deletes the given paths in the catalog. Rows are kept
// for history and revived if the file is indexed again. Marking an
// already-deleted or unknown path is a no-op.
func (s *Service) MarkDeleted(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := s.catalog.MarkDeleted(paths); err != nil {
		return fmt.Errorf("marking deleted: %w", err)
	}
	s.logger.Info("images marked deleted", "count", len(paths))
	return nil
}

// checkDimensions verifies that the provider's embedding dimension matches
// the embeddings already stored in the catalog. Embeddings of different
// dimensions are not comparable, so a mismatch means the configured
// provider or model changed since the catalog was built.
func (s *Service) checkDimensions() error {
	stored, err := s.catalog.EmbeddingDim()
	if err != nil {
		return fmt.Errorf("reading catalog embedding dimension: %w", err)
	}
	if stored == 0 {
		return nil // empty catalog, any dimension is fine
	}
	if want := s.provider.Dimensions(); want != 0 && stored != want {
		return fmt.Errorf("catalog embeddings have dimension %d but provider %s produces %d: switching providers invalidates the catalog, re-index from scratch or restore the previous provider",
			stored, s.provider.Name(), want)
	}
	return nil
}

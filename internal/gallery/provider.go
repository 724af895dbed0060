package gallery

import (
	"context"

	"photofind/internal/model"
)

// Provider is the AI capability set consumed by the indexer and the
// search engine. Caption embeddings and query embeddings must come from
// the same implementation: vectors from different models or dimensions
// are not comparable, and mixing them corrupts the catalog's ranking.
type Provider interface {
	// CaptionImage produces a free-text description of the image.
	CaptionImage(ctx context.Context, imageBytes []byte) (string, error)

	// EmbedText produces a fixed-dimension embedding for arbitrary text.
	// Captions and queries share the same embedding space.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// CaptionAndTags produces a caption together with the seven tag
	// attributes, all evaluated. Implementations that cannot obtain a
	// structured response fall back to deriving tags from the caption by
	// keyword matching; tags are always populated.
	CaptionAndTags(ctx context.Context, imageBytes []byte) (string, model.TagSet, error)

	// Dimensions returns the dimensionality of embeddings produced by
	// this provider.
	Dimensions() int

	// Name identifies the provider for logging and error messages.
	Name() string
}

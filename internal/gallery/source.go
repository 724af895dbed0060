package gallery

import "photofind/internal/model"

// ImageSource abstracts filesystem access so the indexer can be tested
// without touching a real directory tree.
type ImageSource interface {
	// FindImages recursively discovers supported image files under the
	// given folder, which must be an existing directory. Each result
	// carries the file's current modification time.
	FindImages(folder string) ([]model.ImageFile, error)

	// LoadBounded reads an image and re-encodes it as a bounded-size JPEG
	// suitable for sending to a provider.
	LoadBounded(path string) ([]byte, error)
}

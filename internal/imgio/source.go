package imgio

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	// Register decoders for formats image.Decode does not know natively.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"photofind/internal/gallery"
	"photofind/internal/model"
)

// supportedExts is the fixed set of file extensions the indexer considers.
var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

// OSImageSource discovers and loads images from the real filesystem.
type OSImageSource struct {
	maxSide     int
	jpegQuality int
	ignore      *IgnoreMatcher
}

// NewOSImageSource creates an image source. maxSide bounds the longest
// side of loaded images; jpegQuality is used for the re-encode. ignore
// patterns are matched against paths relative to the walked folder.
func NewOSImageSource(maxSide, jpegQuality int, ignorePatterns []string) *OSImageSource {
	if maxSide <= 0 {
		maxSide = 1024
	}
	if jpegQuality <= 0 {
		jpegQuality = 85
	}
	return &OSImageSource{
		maxSide:     maxSide,
		jpegQuality: jpegQuality,
		ignore:      NewIgnoreMatcher(ignorePatterns),
	}
}

// FindImages recursively discovers supported image files under folder.
// Unreadable subtrees abort the walk: a missing folder is a caller error,
// not a per-file indexing failure.
func (s *OSImageSource) FindImages(folder string) ([]model.ImageFile, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", folder)
	}

	var files []model.ImageFile
	err = filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !supportedExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}

		rel, err := filepath.Rel(folder, p)
		if err != nil {
			return fmt.Errorf("calculating relative path: %w", err)
		}
		if s.ignore.Match(rel) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		files = append(files, model.ImageFile{
			Path:  p,
			MTime: mtimeSeconds(fi),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return files, nil
}

// LoadBounded reads an image, shrinks it so its longest side does not
// exceed the configured bound, and re-encodes it as JPEG. The provider
// never sees the original bytes, which keeps request payloads small and
// normalizes the format.
func (s *OSImageSource) LoadBounded(path string) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > s.maxSide || bounds.Dy() > s.maxSide {
		img = imaging.Fit(img, s.maxSide, s.maxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(s.jpegQuality)); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// mtimeSeconds converts a file's modification time to floating-point
// seconds, the unit the catalog stores and compares exactly.
func mtimeSeconds(fi fs.FileInfo) float64 {
	return float64(fi.ModTime().UnixNano()) / 1e9
}

// Compile-time check that OSImageSource implements gallery.ImageSource
var _ gallery.ImageSource = (*OSImageSource)(nil)

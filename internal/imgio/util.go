package imgio

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// SafeExists reports whether a path exists, treating any stat failure
// (permissions, dangling mounts) as "does not exist". Used by callers
// that render results and must never error on a stale catalog entry.
func SafeExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Thumbnail loads an image and returns a size x size center-cropped
// thumbnail.
func Thumbnail(path string, size int) (image.Image, error) {
	if size <= 0 {
		size = 256
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return imaging.Thumbnail(img, size, size, imaging.Lanczos), nil
}

// SaveThumbnail writes a thumbnail of the source image to destPath; the
// output format is inferred from the destination extension.
func SaveThumbnail(srcPath, destPath string, size int) error {
	thumb, err := Thumbnail(srcPath, size)
	if err != nil {
		return err
	}
	if err := imaging.Save(thumb, destPath); err != nil {
		return fmt.Errorf("saving thumbnail: %w", err)
	}
	return nil
}

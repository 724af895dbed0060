package testutil

import (
	"fmt"
	"sort"
	"strings"

	"photofind/internal/model"
)

type mockImage struct {
	mtime   float64
	data    []byte
	loadErr error
}

// MockImageSource is an in-memory gallery.ImageSource. Paths use forward
// slashes; FindImages returns files under the folder prefix in sorted
// order for deterministic tests.
type MockImageSource struct {
	images map[string]*mockImage
}

func NewMockImageSource() *MockImageSource {
	return &MockImageSource{images: make(map[string]*mockImage)}
}

// AddImage registers an image at path with the given mtime.
func (m *MockImageSource) AddImage(path string, mtime float64) {
	m.images[path] = &mockImage{mtime: mtime, data: []byte("jpeg:" + path)}
}

// SetMTime changes the observed modification time of an existing image.
func (m *MockImageSource) SetMTime(path string, mtime float64) {
	m.images[path].mtime = mtime
}

// SetLoadError makes LoadBounded fail for the given path.
func (m *MockImageSource) SetLoadError(path string, err error) {
	m.images[path].loadErr = err
}

func (m *MockImageSource) FindImages(folder string) ([]model.ImageFile, error) {
	prefix := strings.TrimSuffix(folder, "/") + "/"

	var files []model.ImageFile
	for p, img := range m.images {
		if strings.HasPrefix(p, prefix) {
			files = append(files, model.ImageFile{Path: p, MTime: img.mtime})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (m *MockImageSource) LoadBounded(path string) ([]byte, error) {
	img, ok := m.images[path]
	if !ok {
		return nil, fmt.Errorf("no such image: %s", path)
	}
	if img.loadErr != nil {
		return nil, img.loadErr
	}
	return img.data, nil
}

package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Loader decodes texture files. Relative paths are tried as given first and
// then against Dir, which is normally the directory of the config file.
type Loader struct {
	Dir string
}

// LoadImage loads an image from the filesystem and caches it by resolved path.
func (l Loader) LoadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("render: empty image path")
	}
	tried := []string{path}
	if l.Dir != "" && !filepath.IsAbs(path) {
		tried = append(tried, filepath.Join(l.Dir, path))
	}

	var lastErr error
	for _, p := range tried {
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if img := GetImage(key); img != nil {
			return img, nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			lastErr = err
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("render: decode %s: %w", p, err)
		}
		RegisterImage(key, img)
		return img, nil
	}
	return nil, fmt.Errorf("render: load image %s: %w", path, lastErr)
}

package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderLoadImage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "ball.png"), 4, 3)
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name    string
		loader  Loader
		path    string
		wantErr bool
	}{
		{"absolute", Loader{}, filepath.Join(dir, "ball.png"), false},
		{"relative_to_dir", Loader{Dir: dir}, "ball.png", false},
		{"missing", Loader{Dir: dir}, "nope.png", true},
		{"undecodable", Loader{Dir: dir}, "broken.png", true},
		{"empty", Loader{Dir: dir}, "", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img, err := c.loader.LoadImage(c.path)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
				t.Fatalf("expected 4x3, got %v", b)
			}
		})
	}
}

func TestLoaderCachesByPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "box.png")
	writePNG(t, p, 2, 2)

	l := Loader{Dir: dir}
	first, err := l.LoadImage("box.png")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}
	second, err := l.LoadImage(p)
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached image")
	}
}

func TestRegistryIgnoresEmpty(t *testing.T) {
	RegisterImage("", image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	RegisterImage("nil-image", nil)
	if GetImage("") != nil || GetImage("nil-image") != nil {
		t.Fatalf("empty keys and nil images must not be stored")
	}
}

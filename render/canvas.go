package render

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Canvas is the drawing surface objects render onto. Every call draws the
// (0,0)-(w,h) rectangle transformed by geo.
type Canvas interface {
	FillRect(geo ebiten.GeoM, w, h float64, clr color.Color)
	FillRoundedRect(geo ebiten.GeoM, w, h, radius float64, clr color.Color)
	DrawImage(geo ebiten.GeoM, img image.Image, w, h float64)
}

var (
	whiteOnce  sync.Once
	whitePixel *ebiten.Image
)

func white() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whitePixel = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whitePixel
}

type roundedKey struct {
	w, h, r int
}

// SpriteCache keeps GPU copies of decoded images and pre-rasterised rounded
// shapes alive between frames. It is only used from the draw goroutine.
type SpriteCache struct {
	images  map[image.Image]*ebiten.Image
	rounded map[roundedKey]*ebiten.Image
}

func NewSpriteCache() *SpriteCache {
	return &SpriteCache{
		images:  make(map[image.Image]*ebiten.Image),
		rounded: make(map[roundedKey]*ebiten.Image),
	}
}

func (c *SpriteCache) image(img image.Image) *ebiten.Image {
	if eimg, ok := img.(*ebiten.Image); ok {
		return eimg
	}
	if eimg, ok := c.images[img]; ok {
		return eimg
	}
	eimg := ebiten.NewImageFromImage(img)
	c.images[img] = eimg
	return eimg
}

func (c *SpriteCache) roundedRect(w, h, r float64) *ebiten.Image {
	key := roundedKey{w: int(math.Ceil(w)), h: int(math.Ceil(h)), r: int(math.Round(r))}
	if key.w < 1 {
		key.w = 1
	}
	if key.h < 1 {
		key.h = 1
	}
	if img, ok := c.rounded[key]; ok {
		return img
	}

	// clamp radius to half of the shorter side so a "rounded" square becomes a circle
	rad := float32(key.r)
	if maxR := float32(min(key.w, key.h)) / 2; rad > maxR {
		rad = maxR
	}
	fw, fh := float32(key.w), float32(key.h)
	img := ebiten.NewImage(key.w, key.h)
	vector.FillRect(img, rad, 0, fw-2*rad, fh, color.White, true)
	vector.FillRect(img, 0, rad, fw, fh-2*rad, color.White, true)
	for _, p := range [][2]float32{{rad, rad}, {fw - rad, rad}, {rad, fh - rad}, {fw - rad, fh - rad}} {
		vector.FillCircle(img, p[0], p[1], rad, color.White, true)
	}
	c.rounded[key] = img
	return img
}

// ScreenCanvas draws onto an ebiten screen image.
type ScreenCanvas struct {
	screen  *ebiten.Image
	sprites *SpriteCache
}

func NewScreenCanvas(screen *ebiten.Image, sprites *SpriteCache) *ScreenCanvas {
	if sprites == nil {
		sprites = NewSpriteCache()
	}
	return &ScreenCanvas{screen: screen, sprites: sprites}
}

func (c *ScreenCanvas) FillRect(geo ebiten.GeoM, w, h float64, clr color.Color) {
	if c == nil || c.screen == nil || w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Concat(geo)
	op.ColorScale.ScaleWithColor(clr)
	c.screen.DrawImage(white(), op)
}

func (c *ScreenCanvas) FillRoundedRect(geo ebiten.GeoM, w, h, radius float64, clr color.Color) {
	if c == nil || c.screen == nil || w <= 0 || h <= 0 {
		return
	}
	sprite := c.sprites.roundedRect(w, h, radius)
	b := sprite.Bounds()
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Concat(geo)
	op.ColorScale.ScaleWithColor(clr)
	c.screen.DrawImage(sprite, op)
}

func (c *ScreenCanvas) DrawImage(geo ebiten.GeoM, img image.Image, w, h float64) {
	if c == nil || c.screen == nil || img == nil {
		return
	}
	eimg := c.sprites.image(img)
	b := eimg.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Concat(geo)
	c.screen.DrawImage(eimg, op)
}

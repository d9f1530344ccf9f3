package obj

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/desktop-thingies/common"
	"github.com/milk9111/desktop-thingies/render"
)

// ImageLoader decodes the image behind a texture descriptor.
type ImageLoader interface {
	LoadImage(path string) (image.Image, error)
}

// Object is one simulated copy of a Descriptor. Each scene owns its own
// Objects; the body and shape belong to that scene's space once added.
type Object struct {
	desc Descriptor

	body  *cp.Body
	shape *cp.Shape
	image image.Image

	// render size in pixels
	width  float64
	height float64

	stretch Stretch
}

// New clones desc into a fresh, uninitiated Object.
func New(desc Descriptor) *Object {
	return &Object{desc: desc.clone()}
}

// Initiate builds the body and collision shape. It must be called exactly
// once before the object is rendered or added to a scene.
func (o *Object) Initiate(loader ImageLoader) error {
	if o == nil {
		return ErrNotInitiated
	}
	if o.body != nil {
		return ErrAlreadyInitiated
	}
	if err := o.desc.Validate(); err != nil {
		return err
	}

	var (
		body  *cp.Body
		shape *cp.Shape
	)
	switch o.desc.Kind {
	case KindCircle:
		o.width = o.desc.Radius * 2
		o.height = o.width
		body, shape = newCircleBody(o.desc.Mass, common.ToWorld(o.desc.Radius))
	case KindRectangle:
		o.width = o.desc.Width
		o.height = o.desc.Height
		body, shape = newBoxBody(o.desc.Mass, common.ToWorld(o.width), common.ToWorld(o.height))
	case KindTexture:
		if loader == nil {
			return fmt.Errorf("obj: load texture %s: no image loader", o.desc.Texture)
		}
		img, err := loader.LoadImage(o.desc.Texture)
		if err != nil {
			return fmt.Errorf("obj: load texture %s: %w", o.desc.Texture, err)
		}
		b := img.Bounds()
		if b.Dx() == 0 || b.Dy() == 0 {
			return fmt.Errorf("obj: load texture %s: empty image", o.desc.Texture)
		}
		o.image = img
		o.width = float64(b.Dx()) * o.desc.Scale
		o.height = float64(b.Dy()) * o.desc.Scale
		radius := math.Min(o.width, o.height) / 2 * o.desc.CollisionScale
		body, shape = newCircleBody(o.desc.Mass, common.ToWorld(radius))
	}

	shape.SetFriction(o.desc.Friction)
	shape.SetElasticity(o.desc.Elasticity)
	o.body = body
	o.shape = shape
	return nil
}

func (o *Object) Initiated() bool {
	return o != nil && o.body != nil
}

func (o *Object) Descriptor() Descriptor {
	if o == nil {
		return Descriptor{}
	}
	return o.desc
}

func (o *Object) Body() *cp.Body {
	if o == nil {
		return nil
	}
	return o.body
}

func (o *Object) Shape() *cp.Shape {
	if o == nil {
		return nil
	}
	return o.shape
}

// Size returns the rendered size in pixels.
func (o *Object) Size() (float64, float64) {
	if o == nil {
		return 0, 0
	}
	return o.width, o.height
}

// PickupDistance is the hit-test tolerance in world units.
func (o *Object) PickupDistance() float64 {
	if o == nil {
		return 0
	}
	return common.ToWorld(o.desc.PickupDistance)
}

// Extent is the half-size of the object's render box in world units, used to
// keep seeded positions inside the walls.
func (o *Object) Extent() (float64, float64) {
	if o == nil {
		return 0, 0
	}
	return common.ToWorld(o.width / 2), common.ToWorld(o.height / 2)
}

func (o *Object) Stretch() *Stretch {
	if o == nil {
		return nil
	}
	return &o.stretch
}

// RenderOnto draws the object centered on the origin of geo. It does not
// touch the physics body; callers bake position, rotation and stretch into
// geo.
func (o *Object) RenderOnto(c render.Canvas, geo ebiten.GeoM) error {
	if !o.Initiated() {
		return ErrNotInitiated
	}
	if c == nil {
		return nil
	}

	local := ebiten.GeoM{}
	local.Translate(-o.width/2, -o.height/2)
	local.Concat(geo)

	switch o.desc.Kind {
	case KindCircle:
		c.FillRoundedRect(local, o.width, o.height, o.width/2, o.fill())
	case KindRectangle:
		c.FillRect(local, o.width, o.height, o.fill())
	case KindTexture:
		c.DrawImage(local, o.image, o.width, o.height)
	}
	return nil
}

func (o *Object) fill() color.Color {
	if o.desc.Color == nil {
		return color.White
	}
	return o.desc.Color
}

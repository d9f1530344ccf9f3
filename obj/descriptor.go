package obj

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
)

var (
	ErrInvalidDescriptor = errors.New("obj: invalid descriptor")
	ErrNotInitiated      = errors.New("obj: object not initiated")
	ErrAlreadyInitiated  = errors.New("obj: object already initiated")
)

// Kind is the closed set of object shapes.
type Kind int

const (
	KindCircle Kind = iota + 1
	KindRectangle
	KindTexture
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindRectangle:
		return "rectangle"
	case KindTexture:
		return "texture"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a config name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "circle":
		return KindCircle, nil
	case "rectangle", "rect", "box":
		return KindRectangle, nil
	case "texture", "image":
		return KindTexture, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidDescriptor, s)
}

const (
	DefaultMass           = 1.0
	DefaultFriction       = 0.5
	DefaultElasticity     = 0.85
	DefaultPickupDistance = 10.0
)

// Descriptor is the immutable template an Object is cloned from. Sizes and
// the pickup distance are in pixels.
type Descriptor struct {
	Kind Kind

	// Circle
	Radius float64
	// Rectangle
	Width  float64
	Height float64
	// Texture
	Texture        string
	Scale          float64
	CollisionScale float64

	Mass           float64
	Friction       float64
	Elasticity     float64
	PickupDistance float64
	Displays       []string
	Color          color.Color
}

// Validate checks the ranges the physics engine relies on.
func (d Descriptor) Validate() error {
	if d.Mass <= 0 {
		return fmt.Errorf("%w: mass must be > 0, got %v", ErrInvalidDescriptor, d.Mass)
	}
	if d.Friction < 0 || d.Friction > 1 {
		return fmt.Errorf("%w: friction must be in [0,1], got %v", ErrInvalidDescriptor, d.Friction)
	}
	if d.Elasticity < 0 || d.Elasticity > 1 {
		return fmt.Errorf("%w: elasticity must be in [0,1], got %v", ErrInvalidDescriptor, d.Elasticity)
	}
	if d.PickupDistance < 0 {
		return fmt.Errorf("%w: pickup distance must be >= 0, got %v", ErrInvalidDescriptor, d.PickupDistance)
	}

	switch d.Kind {
	case KindCircle:
		if d.Radius <= 0 {
			return fmt.Errorf("%w: circle radius must be > 0, got %v", ErrInvalidDescriptor, d.Radius)
		}
	case KindRectangle:
		if d.Width <= 0 || d.Height <= 0 {
			return fmt.Errorf("%w: rectangle size must be > 0, got %vx%v", ErrInvalidDescriptor, d.Width, d.Height)
		}
	case KindTexture:
		if d.Texture == "" {
			return fmt.Errorf("%w: texture path is empty", ErrInvalidDescriptor)
		}
		if d.Scale <= 0 || d.CollisionScale <= 0 {
			return fmt.Errorf("%w: texture scale must be > 0, got %v/%v", ErrInvalidDescriptor, d.Scale, d.CollisionScale)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidDescriptor, int(d.Kind))
	}
	return nil
}

// Targets reports whether the descriptor should be placed on display id. An
// empty display list targets every display.
func (d Descriptor) Targets(id string) bool {
	return len(d.Displays) == 0 || slices.Contains(d.Displays, id)
}

func (d Descriptor) clone() Descriptor {
	d.Displays = slices.Clone(d.Displays)
	return d
}

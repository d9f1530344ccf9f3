package obj

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
)

type recordedDraw struct {
	op     string
	geo    ebiten.GeoM
	w, h   float64
	radius float64
	clr    color.Color
	img    image.Image
}

type recordingCanvas struct {
	draws []recordedDraw
}

func (c *recordingCanvas) FillRect(geo ebiten.GeoM, w, h float64, clr color.Color) {
	c.draws = append(c.draws, recordedDraw{op: "rect", geo: geo, w: w, h: h, clr: clr})
}

func (c *recordingCanvas) FillRoundedRect(geo ebiten.GeoM, w, h, radius float64, clr color.Color) {
	c.draws = append(c.draws, recordedDraw{op: "rounded", geo: geo, w: w, h: h, radius: radius, clr: clr})
}

func (c *recordingCanvas) DrawImage(geo ebiten.GeoM, img image.Image, w, h float64) {
	c.draws = append(c.draws, recordedDraw{op: "image", geo: geo, w: w, h: h, img: img})
}

type fakeLoader struct {
	img   image.Image
	err   error
	calls int
}

func (l *fakeLoader) LoadImage(path string) (image.Image, error) {
	l.calls++
	return l.img, l.err
}

func circleDesc() Descriptor {
	return Descriptor{Kind: KindCircle, Radius: 150, Mass: 1, Friction: 1, Elasticity: 0.5, PickupDistance: 10}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDescriptorValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(d *Descriptor)
		wantErr bool
	}{
		{"valid_circle", func(d *Descriptor) {}, false},
		{"zero_mass", func(d *Descriptor) { d.Mass = 0 }, true},
		{"negative_friction", func(d *Descriptor) { d.Friction = -0.1 }, true},
		{"friction_above_one", func(d *Descriptor) { d.Friction = 1.01 }, true},
		{"elasticity_above_one", func(d *Descriptor) { d.Elasticity = 2 }, true},
		{"zero_radius", func(d *Descriptor) { d.Radius = 0 }, true},
		{"negative_pickup", func(d *Descriptor) { d.PickupDistance = -1 }, true},
		{"rect_ok", func(d *Descriptor) { d.Kind = KindRectangle; d.Width = 10; d.Height = 5 }, false},
		{"rect_zero_height", func(d *Descriptor) { d.Kind = KindRectangle; d.Width = 10 }, true},
		{"texture_no_path", func(d *Descriptor) { d.Kind = KindTexture; d.Scale = 1; d.CollisionScale = 1 }, true},
		{"texture_zero_scale", func(d *Descriptor) { d.Kind = KindTexture; d.Texture = "a.png"; d.CollisionScale = 1 }, true},
		{"unknown_kind", func(d *Descriptor) { d.Kind = 0 }, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := circleDesc()
			c.mutate(&d)
			err := d.Validate()
			if c.wantErr {
				if !errors.Is(err, ErrInvalidDescriptor) {
					t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDescriptorTargets(t *testing.T) {
	d := circleDesc()
	if !d.Targets("DP-1") {
		t.Fatalf("descriptor without displays should target every display")
	}
	d.Displays = []string{"DP-3", "HDMI-A-1"}
	if !d.Targets("HDMI-A-1") {
		t.Fatalf("expected HDMI-A-1 to be targeted")
	}
	if d.Targets("DP-1") {
		t.Fatalf("did not expect DP-1 to be targeted")
	}
}

func TestNewClonesDescriptor(t *testing.T) {
	d := circleDesc()
	d.Displays = []string{"DP-1"}
	o := New(d)
	d.Displays[0] = "DP-2"
	if got := o.Descriptor().Displays[0]; got != "DP-1" {
		t.Fatalf("object shares display slice with template: got %s", got)
	}
}

func TestInitiateBuildsBodies(t *testing.T) {
	tex := image.NewRGBA(image.Rect(0, 0, 60, 40))

	cases := []struct {
		name       string
		desc       Descriptor
		wantW      float64
		wantH      float64
		wantMoment float64
	}{
		{
			name:       "circle",
			desc:       circleDesc(),
			wantW:      300,
			wantH:      300,
			wantMoment: 1 * 15 * 15 / 2,
		},
		{
			name:       "rectangle",
			desc:       Descriptor{Kind: KindRectangle, Width: 500, Height: 200, Mass: 2, Friction: 0.5, Elasticity: 0.5},
			wantW:      500,
			wantH:      200,
			wantMoment: 2 * (50*50 + 20*20) / 12.0,
		},
		{
			// collision radius = min(60,40)*2/2 * 0.5 = 20px = 2 world units
			name:       "texture",
			desc:       Descriptor{Kind: KindTexture, Texture: "fumo.png", Scale: 2, CollisionScale: 0.5, Mass: 4, Friction: 0.5, Elasticity: 0.5},
			wantW:      120,
			wantH:      80,
			wantMoment: 4 * 2 * 2 / 2,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o := New(c.desc)
			if err := o.Initiate(&fakeLoader{img: tex}); err != nil {
				t.Fatalf("initiate: %v", err)
			}
			w, h := o.Size()
			if w != c.wantW || h != c.wantH {
				t.Fatalf("expected size %vx%v, got %vx%v", c.wantW, c.wantH, w, h)
			}
			if !almostEqual(o.Body().Moment(), c.wantMoment) {
				t.Fatalf("expected moment %v, got %v", c.wantMoment, o.Body().Moment())
			}
			if o.Body().Mass() != c.desc.Mass {
				t.Fatalf("expected mass %v, got %v", c.desc.Mass, o.Body().Mass())
			}
			if o.Shape().Friction() != c.desc.Friction || o.Shape().Elasticity() != c.desc.Elasticity {
				t.Fatalf("material not applied to shape")
			}
			if o.Shape().Body() != o.Body() {
				t.Fatalf("shape not attached to body")
			}
		})
	}
}

func TestBoxVerticesAreCenteredCorners(t *testing.T) {
	verts := boxVertices(4, 2)
	want := map[cp.Vector]bool{
		{X: 2, Y: -1}: true, {X: 2, Y: 1}: true, {X: -2, Y: 1}: true, {X: -2, Y: -1}: true,
	}
	if len(verts) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(verts))
	}
	area := 0.0
	for i, v := range verts {
		if !want[v] {
			t.Fatalf("unexpected vertex %v", v)
		}
		n := verts[(i+1)%len(verts)]
		area += v.X*n.Y - n.X*v.Y
	}
	if area <= 0 {
		t.Fatalf("expected counter-clockwise winding, signed area %v", area)
	}
}

func TestInitiateErrors(t *testing.T) {
	t.Run("twice", func(t *testing.T) {
		o := New(circleDesc())
		if err := o.Initiate(nil); err != nil {
			t.Fatalf("first initiate: %v", err)
		}
		if err := o.Initiate(nil); !errors.Is(err, ErrAlreadyInitiated) {
			t.Fatalf("expected ErrAlreadyInitiated, got %v", err)
		}
	})

	t.Run("texture_load_failure", func(t *testing.T) {
		loadErr := errors.New("no such file")
		o := New(Descriptor{Kind: KindTexture, Texture: "missing.png", Scale: 1, CollisionScale: 1, Mass: 1})
		err := o.Initiate(&fakeLoader{err: loadErr})
		if !errors.Is(err, loadErr) {
			t.Fatalf("expected wrapped load error, got %v", err)
		}
		if o.Initiated() {
			t.Fatalf("object should not be initiated after a failed load")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		d := circleDesc()
		d.Mass = -1
		if err := New(d).Initiate(nil); !errors.Is(err, ErrInvalidDescriptor) {
			t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
		}
	})
}

func TestRenderOnto(t *testing.T) {
	t.Run("before_initiate", func(t *testing.T) {
		c := &recordingCanvas{}
		if err := New(circleDesc()).RenderOnto(c, ebiten.GeoM{}); !errors.Is(err, ErrNotInitiated) {
			t.Fatalf("expected ErrNotInitiated, got %v", err)
		}
		if len(c.draws) != 0 {
			t.Fatalf("nothing should be drawn before initiate")
		}
	})

	tex := image.NewRGBA(image.Rect(0, 0, 10, 10))
	cases := []struct {
		name   string
		desc   Descriptor
		wantOp string
		half   float64
	}{
		{"circle", circleDesc(), "rounded", 150},
		{"rectangle", Descriptor{Kind: KindRectangle, Width: 40, Height: 40, Mass: 1, Color: color.Black}, "rect", 20},
		{"texture", Descriptor{Kind: KindTexture, Texture: "t.png", Scale: 3, CollisionScale: 1, Mass: 1}, "image", 15},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o := New(c.desc)
			if err := o.Initiate(&fakeLoader{img: tex}); err != nil {
				t.Fatalf("initiate: %v", err)
			}
			before := o.Body().Position()

			geo := ebiten.GeoM{}
			geo.Translate(100, 50)
			canvas := &recordingCanvas{}
			if err := o.RenderOnto(canvas, geo); err != nil {
				t.Fatalf("render: %v", err)
			}
			if len(canvas.draws) != 1 || canvas.draws[0].op != c.wantOp {
				t.Fatalf("expected one %s draw, got %+v", c.wantOp, canvas.draws)
			}
			x, y := canvas.draws[0].geo.Apply(0, 0)
			if !almostEqual(x, 100-c.half) || !almostEqual(y, 50-c.half) {
				t.Fatalf("expected top-left at (%v,%v), got (%v,%v)", 100-c.half, 50-c.half, x, y)
			}
			if o.Body().Position() != before {
				t.Fatalf("render must not move the body")
			}
		})
	}
}

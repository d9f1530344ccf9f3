package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/desktop-thingies/client"
	"github.com/milk9111/desktop-thingies/obj"
	"github.com/milk9111/desktop-thingies/scene"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Spec is the on-disk configuration. Sizes and offsets are in pixels,
// gravity in world units/s².
type Spec struct {
	Display        string       `yaml:"display"`
	Monitor        string       `yaml:"monitor"`
	Framerate      int          `yaml:"framerate"`
	Gravity        Vec2         `yaml:"gravity"`
	WallFriction   *float64     `yaml:"wall_friction"`
	WallElasticity *float64     `yaml:"wall_elasticity"`
	TopOffset      float64      `yaml:"top_offset"`
	BottomOffset   float64      `yaml:"bottom_offset"`
	LeftOffset     float64      `yaml:"left_offset"`
	RightOffset    float64      `yaml:"right_offset"`
	Substeps       int          `yaml:"substeps"`
	Objects        []ObjectSpec `yaml:"objects"`
}

type ObjectSpec struct {
	Kind           string     `yaml:"kind"`
	Radius         float64    `yaml:"radius"`
	Width          float64    `yaml:"width"`
	Height         float64    `yaml:"height"`
	Texture        string     `yaml:"texture"`
	Scale          float64    `yaml:"scale"`
	CollisionScale float64    `yaml:"collision_scale"`
	Mass           *float64   `yaml:"mass"`
	Friction       *float64   `yaml:"friction"`
	Elasticity     *float64   `yaml:"elasticity"`
	PickupDistance *float64   `yaml:"pickup_distance"`
	Displays       []string   `yaml:"displays"`
	Color          *YAMLColor `yaml:"color"`
	Count          int        `yaml:"count"`
}

// Vec2 is written as a two element list, [x, y].
type Vec2 [2]float64

func (v *Vec2) UnmarshalYAML(value *yaml.Node) error {
	var xs []float64
	if err := value.Decode(&xs); err != nil {
		return fmt.Errorf("vector must be a list of two numbers: %w", err)
	}
	if len(xs) != 2 {
		return fmt.Errorf("vector must have two components, got %d", len(xs))
	}
	v[0], v[1] = xs[0], xs[1]
	return nil
}

// YAMLColor accepts #rrggbb, #rrggbbaa or an SVG colour name.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	clr, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = clr
	return nil
}

func ParseColor(v string) (color.Color, error) {
	name := strings.ToLower(strings.TrimSpace(v))
	if named, ok := colornames.Map[name]; ok {
		return named, nil
	}

	s := strings.TrimPrefix(name, "#")
	if len(s) != 6 && len(s) != 8 {
		return nil, fmt.Errorf("invalid color format: %s", v)
	}

	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		n, err := parse(i * 2)
		if err != nil {
			return nil, fmt.Errorf("invalid color %s: %w", v, err)
		}
		rgba[i] = n
	}
	// premultiply so translucent colours blend correctly
	a := uint16(rgba[3])
	return color.RGBA{
		R: uint8(uint16(rgba[0]) * a / 255),
		G: uint8(uint16(rgba[1]) * a / 255),
		B: uint8(uint16(rgba[2]) * a / 255),
		A: rgba[3],
	}, nil
}

// Parse decodes a YAML document.
func Parse(data []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return spec, nil
}

// Load reads a .yaml, .yml or .tengo configuration file.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if isScriptFile(path) {
		spec, err := RunScript(data, filepath.Dir(path))
		if err != nil {
			return Spec{}, fmt.Errorf("config: run %s: %w", path, err)
		}
		return spec, nil
	}
	if !isSpecFile(path) {
		return Spec{}, fmt.Errorf("config: load %s: unsupported format %q", path, filepath.Ext(path))
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return spec, nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Descriptor turns one object entry into an object descriptor with defaults
// applied.
func (o ObjectSpec) Descriptor() (obj.Descriptor, error) {
	kind, err := obj.ParseKind(strings.ToLower(strings.TrimSpace(o.Kind)))
	if err != nil {
		return obj.Descriptor{}, err
	}
	d := obj.Descriptor{
		Kind:           kind,
		Radius:         o.Radius,
		Width:          o.Width,
		Height:         o.Height,
		Texture:        o.Texture,
		Scale:          o.Scale,
		CollisionScale: o.CollisionScale,
		Mass:           orDefault(o.Mass, obj.DefaultMass),
		Friction:       orDefault(o.Friction, obj.DefaultFriction),
		Elasticity:     orDefault(o.Elasticity, obj.DefaultElasticity),
		PickupDistance: orDefault(o.PickupDistance, obj.DefaultPickupDistance),
		Displays:       o.Displays,
		Color:          color.White,
	}
	if d.Scale == 0 {
		d.Scale = 1
	}
	if d.CollisionScale == 0 {
		d.CollisionScale = 1
	}
	if o.Color != nil && o.Color.Color != nil {
		d.Color = o.Color.Color
	}
	if err := d.Validate(); err != nil {
		return obj.Descriptor{}, err
	}
	return d, nil
}

// ClientConfig validates the spec and expands it into the client's
// configuration.
func (s Spec) ClientConfig() (client.Config, error) {
	display := s.Display
	if display == "" {
		display = s.Monitor
	}
	if s.Framerate < 0 {
		return client.Config{}, fmt.Errorf("config: framerate must be >= 0, got %d", s.Framerate)
	}

	cfg := client.Config{
		Display:        display,
		Framerate:      s.Framerate,
		Gravity:        cp.Vector{X: s.Gravity[0], Y: s.Gravity[1]},
		WallFriction:   orDefault(s.WallFriction, client.DefaultWallFriction),
		WallElasticity: orDefault(s.WallElasticity, client.DefaultWallElasticity),
		Offsets: scene.Offsets{
			Top:    s.TopOffset,
			Bottom: s.BottomOffset,
			Left:   s.LeftOffset,
			Right:  s.RightOffset,
		},
		Substeps: s.Substeps,
	}
	if cfg.WallFriction < 0 || cfg.WallElasticity < 0 {
		return client.Config{}, fmt.Errorf("config: wall friction and elasticity must be >= 0")
	}

	for i, o := range s.Objects {
		d, err := o.Descriptor()
		if err != nil {
			return client.Config{}, fmt.Errorf("config: object %d: %w", i, err)
		}
		n := max(o.Count, 1)
		for range n {
			cfg.Objects = append(cfg.Objects, d)
		}
	}
	return cfg, nil
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}

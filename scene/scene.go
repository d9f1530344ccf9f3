package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/desktop-thingies/common"
	"github.com/milk9111/desktop-thingies/obj"
	"github.com/milk9111/desktop-thingies/render"
)

var ErrNoObjects = errors.New("scene: no objects")

type State int

const (
	StateUninitialized State = iota
	StateActive
	StateAsleep
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateAsleep:
		return "asleep"
	}
	return "uninitialized"
}

type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
)

// Offsets insets the walls from the monitor edges, in pixels.
type Offsets struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

type Params struct {
	Gravity        cp.Vector // world units/s²
	WallFriction   float64
	WallElasticity float64
	Offsets        Offsets
	Substeps       int
	Rand           *rand.Rand
	Logger         *log.Logger
}

// Scene is the simulation for one monitor. All fields below mu are guarded
// by it; Update and Draw hold it for their whole duration, pointer handlers
// only around the mutation they make.
type Scene struct {
	id     string
	width  float64 // pixels
	height float64
	params Params
	logger *log.Logger

	mu            sync.Mutex
	space         *cp.Space
	objects       []*obj.Object
	shapeToObject map[*cp.Shape]*obj.Object
	walls         []*cp.Shape
	state         State
	held          *cp.Body
	mouse         cp.Vector // pixels
	idleFrames    int
	frames        uint64
	hovering      bool
	cursor        func(Cursor)
}

// New builds the space for a monitor of the given pixel size, seeds every
// object at a random position and angle inside the walls, and leaves the
// scene active. Objects must already be initiated.
func New(id string, width, height int, objects []*obj.Object, params Params) (*Scene, error) {
	if len(objects) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoObjects, id)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene: invalid geometry %dx%d for %s", width, height, id)
	}
	for _, o := range objects {
		if !o.Initiated() {
			return nil, fmt.Errorf("scene: add object to %s: %w", id, obj.ErrNotInitiated)
		}
	}
	if params.Substeps <= 0 {
		params.Substeps = 1
	}
	if params.Rand == nil {
		params.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := params.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Scene{
		id:            id,
		width:         float64(width),
		height:        float64(height),
		params:        params,
		logger:        logger.With("display", id),
		shapeToObject: make(map[*cp.Shape]*obj.Object, len(objects)),
	}
	s.setupSpace(objects)
	return s, nil
}

func (s *Scene) setupSpace(objects []*obj.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()

	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(s.params.Gravity)
	s.space = space

	p0, p1 := s.bounds()
	for _, o := range objects {
		body := o.Body()
		shape := o.Shape()
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryObject, cp.ALL_CATEGORIES))
		space.AddBody(body)
		space.AddShape(shape)

		ex, ey := o.Extent()
		body.SetPosition(cp.Vector{
			X: s.randomIn(p0.X+ex, p1.X-ex),
			Y: s.randomIn(p0.Y+ey, p1.Y-ey),
		})
		body.SetAngle(s.params.Rand.Float64() * math.Pi * 2)
		body.SetVelocityUpdateFunc(s.velocityFunc)
		space.ReindexShapesForBody(body)

		s.objects = append(s.objects, o)
		s.shapeToObject[shape] = o
	}

	s.walls = addBox(space, p0, p1, s.params.WallFriction, s.params.WallElasticity)
	s.state = StateActive
	s.logger.Info("scene ready", "objects", len(s.objects), "size", fmt.Sprintf("%.0fx%.0f", s.width, s.height))
}

// randomIn picks a value in [lo, hi], collapsing to the midpoint when the
// range is inverted (object wider than the box).
func (s *Scene) randomIn(lo, hi float64) float64 {
	if hi <= lo {
		return (lo + hi) / 2
	}
	return lo + s.params.Rand.Float64()*(hi-lo)
}

// bounds returns the wall box in world units.
func (s *Scene) bounds() (cp.Vector, cp.Vector) {
	off := s.params.Offsets
	return cp.Vector{X: common.ToWorld(off.Left), Y: common.ToWorld(off.Top)},
		cp.Vector{X: common.ToWorld(s.width - off.Right), Y: common.ToWorld(s.height - off.Bottom)}
}

func (s *Scene) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

func (s *Scene) Size() (int, int) {
	if s == nil {
		return 0, 0
	}
	return int(s.width), int(s.height)
}

func (s *Scene) State() State {
	if s == nil {
		return StateUninitialized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scene) Objects() []*obj.Object {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*obj.Object(nil), s.objects...)
}

// Holding returns the object currently held by the pointer, if any.
func (s *Scene) Holding() *obj.Object {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objectFor(s.held)
}

func (s *Scene) Frames() uint64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// SetCursorFunc registers the hover feedback callback. It is called with the
// scene lock held and must not call back into the scene.
func (s *Scene) SetCursorFunc(f func(Cursor)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.cursor = f
	s.mu.Unlock()
}

// Update advances the simulation by step seconds. It returns false without
// touching the space while the scene is asleep.
func (s *Scene) Update(step float64) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive || s.space == nil {
		return false
	}

	if s.held != nil {
		s.held.ApplyImpulseAtWorldPoint(s.dragVector().Mult(DragScale), s.held.Position())
	}
	dt := step / float64(s.params.Substeps)
	for i := 0; i < s.params.Substeps; i++ {
		s.space.Step(dt)
	}
	s.frames++

	if s.held == nil && s.atRest() {
		s.idleFrames++
	} else {
		s.idleFrames = 0
	}
	if s.idleFrames >= SleepFrames {
		s.state = StateAsleep
		s.logger.Debug("scene asleep", "frame", s.frames)
	}
	return true
}

func (s *Scene) atRest() bool {
	for _, o := range s.objects {
		b := o.Body()
		if b.Velocity().Length() > SleepVelocity || math.Abs(b.AngularVelocity()) > SleepAngularVelocity {
			return false
		}
	}
	return true
}

func (s *Scene) wake() {
	if s.state == StateAsleep {
		s.logger.Debug("scene awake", "frame", s.frames)
	}
	if s.state != StateUninitialized {
		s.state = StateActive
	}
	s.idleFrames = 0
}

// dragVector points from the held body to the pointer in world units,
// clamped to MaxDrag.
func (s *Scene) dragVector() cp.Vector {
	if s.held == nil {
		return cp.Vector{}
	}
	target := cp.Vector{X: common.ToWorld(s.mouse.X), Y: common.ToWorld(s.mouse.Y)}
	return target.Sub(s.held.Position()).Clamp(MaxDrag)
}

func (s *Scene) objectFor(body *cp.Body) *obj.Object {
	if body == nil {
		return nil
	}
	for _, o := range s.objects {
		if o.Body() == body {
			return o
		}
	}
	return nil
}

// Draw renders every object with its current transform and stretch.
func (s *Scene) Draw(c render.Canvas) {
	if s == nil || c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.objects {
		b := o.Body()
		scale := o.Stretch().Next(b.Velocity(), b.AngularVelocity(), b == s.held)
		pos := b.Position()

		geo := ebiten.GeoM{}
		geo.Rotate(b.Angle())
		geo.Scale(scale.X, scale.Y)
		geo.Translate(common.ToPixels(pos.X), common.ToPixels(pos.Y))
		if err := o.RenderOnto(c, geo); err != nil {
			s.logger.Error("render object", "kind", o.Descriptor().Kind, "err", err)
		}
	}
}

// DrawDebug overlays the raw chipmunk shapes.
func (s *Scene) DrawDebug(screen *ebiten.Image) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	render.DrawSpaceDebug(s.space, screen)
}

// Close removes every body and shape from the space. The scene is
// uninitialized afterwards and ignores further input.
func (s *Scene) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.space == nil {
		return
	}
	for _, o := range s.objects {
		s.space.RemoveShape(o.Shape())
		s.space.RemoveBody(o.Body())
	}
	for _, w := range s.walls {
		s.space.RemoveShape(w)
	}
	s.held = nil
	s.objects = nil
	s.walls = nil
	s.shapeToObject = map[*cp.Shape]*obj.Object{}
	s.space = nil
	s.state = StateUninitialized
}

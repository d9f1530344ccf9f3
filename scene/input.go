package scene

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/desktop-thingies/common"
	"github.com/milk9111/desktop-thingies/obj"
)

// Pointer coordinates are surface-local pixels.

// Press wakes the scene and picks up the object under the pointer, if any.
func (s *Scene) Press(x, y float64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.space == nil {
		return
	}

	s.mouse = s.clampPointer(x, y)
	s.wake()
	if s.held != nil {
		return
	}
	if o := s.hitTest(s.mouse); o != nil {
		s.held = o.Body()
		s.logger.Debug("picked up", "kind", o.Descriptor().Kind)
	}
}

// Release flings the held object toward the pointer and lets go of it.
func (s *Scene) Release(x, y float64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.space == nil {
		return
	}

	s.mouse = s.clampPointer(x, y)
	if s.held == nil {
		return
	}
	impulse := s.dragVector().Mult(ReleaseScale)
	s.held.ApplyImpulseAtWorldPoint(impulse, s.held.Position())
	s.logger.Debug("released", "impulse", impulse)
	s.held = nil
	s.wake()
}

// Move tracks the pointer and updates the hover cursor.
func (s *Scene) Move(x, y float64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.space == nil {
		return
	}

	s.mouse = s.clampPointer(x, y)
	if s.held != nil {
		if s.dragVector() != (cp.Vector{}) {
			s.wake()
		}
	}

	hovering := s.held != nil || s.hitTest(s.mouse) != nil
	if hovering == s.hovering {
		return
	}
	s.hovering = hovering
	if s.cursor != nil {
		if hovering {
			s.cursor(CursorGrab)
		} else {
			s.cursor(CursorDefault)
		}
	}
}

// Scroll spins the held object.
func (s *Scene) Scroll(dy float64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.space == nil || s.held == nil {
		return
	}
	s.held.SetAngularVelocity(s.held.AngularVelocity() + dy)
	s.space.ReindexShapesForBody(s.held)
	s.wake()
}

func (s *Scene) clampPointer(x, y float64) cp.Vector {
	off := s.params.Offsets
	return cp.Vector{
		X: common.Clamp(x, off.Left+PointerInset, s.width-off.Right-PointerInset),
		Y: common.Clamp(y, off.Top+PointerInset, s.height-off.Bottom-PointerInset),
	}
}

// hitTest returns the nearest object (p in pixels) whose shape lies within
// that object's own pickup distance.
func (s *Scene) hitTest(p cp.Vector) *obj.Object {
	maxDist := 0.0
	for _, o := range s.objects {
		maxDist = max(maxDist, o.PickupDistance())
	}
	world := cp.Vector{X: common.ToWorld(p.X), Y: common.ToWorld(p.Y)}

	var (
		best     *obj.Object
		bestDist = math.Inf(1)
	)
	s.space.BBQuery(cp.NewBBForCircle(world, maxDist), pickFilter, func(shape *cp.Shape, _ interface{}) {
		o, ok := s.shapeToObject[shape]
		if !ok {
			return
		}
		d := shape.PointQuery(world).Distance
		if d <= o.PickupDistance() && d < bestDist {
			best, bestDist = o, d
		}
	}, nil)
	return best
}

package obj

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/desktop-thingies/common"
)

const (
	StretchMin = 0.4
	StretchMax = 1.5

	impactFloor    = 0.8
	impactCurve    = 0.02
	impactFrames   = 4
	flipThreshold  = 0.1
	deltaThreshold = 10.0

	speedStretch   = 0.0005
	spinThreshold  = 5.0
	spinStretch    = 0.004
	spinStretchMax = 0.05
)

var heldPinch = cp.Vector{X: 0.9, Y: 0.9}

// Stretch is the per-object squash and stretch state. It is advanced once per
// rendered frame and never feeds back into the simulation.
type Stretch struct {
	lastVel   cp.Vector
	target    cp.Vector
	countdown int
}

// Next consumes the body's current velocities and returns the x/y scale to
// render with.
func (s *Stretch) Next(vel cp.Vector, angVel float64, held bool) cp.Vector {
	if !common.Finite(vel.X) || !common.Finite(vel.Y) {
		vel = cp.Vector{}
	}
	if !common.Finite(angVel) {
		angVel = 0
	}
	prev := s.lastVel
	s.lastVel = vel

	if held {
		s.countdown = 0
		return clampScale(heldPinch)
	}

	if isImpact(prev.X, vel.X) || isImpact(prev.Y, vel.Y) {
		s.target = impactScale(prev, vel.Sub(prev).Length())
		s.countdown = impactFrames
	}

	if s.countdown > 0 {
		t := float64(s.countdown) / impactFrames
		s.countdown--
		return clampScale(cp.Vector{
			X: common.Lerp(1, s.target.X, t),
			Y: common.Lerp(1, s.target.Y, t),
		})
	}

	ax := math.Abs(vel.X) * speedStretch
	ay := math.Abs(vel.Y) * speedStretch
	scale := cp.Vector{X: 1 + ax - ay/2, Y: 1 + ay - ax/2}
	if spin := math.Abs(angVel); spin > spinThreshold {
		extra := math.Min(spinStretchMax, (spin-spinThreshold)*spinStretch)
		scale.X += extra
		scale.Y += extra
	}
	return clampScale(scale)
}

// Active reports whether an impact is still decaying.
func (s *Stretch) Active() bool {
	return s != nil && s.countdown > 0
}

func isImpact(prev, cur float64) bool {
	if math.Abs(prev) > flipThreshold && prev*cur < 0 {
		return true
	}
	return math.Abs(cur-prev) > deltaThreshold
}

// impactScale squashes along the pre-impact travel direction and bulges
// across it.
func impactScale(prev cp.Vector, speed float64) cp.Vector {
	f := math.Max(impactFloor, 1-impactCurve*math.Sqrt(speed))
	inv := 1 / f
	theta := math.Atan2(prev.Y, prev.X)
	c2 := math.Cos(theta) * math.Cos(theta)
	s2 := 1 - c2
	return cp.Vector{
		X: f*c2 + inv*s2,
		Y: f*s2 + inv*c2,
	}
}

func clampScale(v cp.Vector) cp.Vector {
	fix := func(x float64) float64 {
		if !common.Finite(x) {
			return 1
		}
		return common.Clamp(x, StretchMin, StretchMax)
	}
	return cp.Vector{X: fix(v.X), Y: fix(v.Y)}
}

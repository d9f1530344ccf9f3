package scene

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/desktop-thingies/common"
)

// limitVelocity applies air friction, the held-body damping, the two-tier
// speed cap and the zero snap to one body's velocities.
func limitVelocity(v cp.Vector, w float64, held bool) (cp.Vector, float64) {
	if !common.Finite(v.X) || !common.Finite(v.Y) {
		v = cp.Vector{}
	}
	if !common.Finite(w) {
		w = 0
	}

	v = v.Mult(AirFriction)
	w *= AirFriction
	if held {
		v = v.Mult(HeldDamping)
		w *= HeldDamping
	}

	hard := MaxVelocity * HardVelocityFactor
	if v.Length() > MaxVelocity {
		v = v.Mult(SoftVelocityCut)
	}
	if v.Length() > hard {
		v = v.Mult(HardVelocityCut)
	}
	if v.Length() > hard {
		v = v.Clamp(hard)
	}

	if held {
		if math.Abs(w) > HeldAngularLimit {
			w = common.Sign(w) * HeldAngularReset
		}
	} else if math.Abs(w) > MaxAngularVelocity {
		w *= SoftAngularCut
	}

	if v.Length() < VelocitySnap {
		v = cp.Vector{}
	}
	if math.Abs(w) < AngularVelocitySnap {
		w = 0
	}
	return v, w
}

// velocityFunc is installed on every object body. It runs inside space.Step,
// which Update calls with s.mu held.
func (s *Scene) velocityFunc(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
	cp.BodyUpdateVelocity(body, gravity, damping, dt)
	v, w := limitVelocity(body.Velocity(), body.AngularVelocity(), body == s.held)
	body.SetVelocityVector(v)
	body.SetAngularVelocity(w)
}

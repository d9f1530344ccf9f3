package obj

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"
)

func inRange(v cp.Vector) bool {
	return v.X >= StretchMin && v.X <= StretchMax && v.Y >= StretchMin && v.Y <= StretchMax
}

func TestStretchStaysClamped(t *testing.T) {
	cases := []struct {
		name string
		vel  func(i int, r *rand.Rand) (cp.Vector, float64)
	}{
		{"sign_flip_huge", func(i int, r *rand.Rand) (cp.Vector, float64) {
			s := float64(1 - 2*(i%2))
			return cp.Vector{X: s * 1e6, Y: -s * 1e6}, s * 1e4
		}},
		{"random", func(i int, r *rand.Rand) (cp.Vector, float64) {
			return cp.Vector{X: r.NormFloat64() * 800, Y: r.NormFloat64() * 800}, r.NormFloat64() * 60
		}},
		{"tiny_flips", func(i int, r *rand.Rand) (cp.Vector, float64) {
			s := float64(1 - 2*(i%2))
			return cp.Vector{X: s * 0.11, Y: s * 0.11}, 0
		}},
		{"non_finite", func(i int, r *rand.Rand) (cp.Vector, float64) {
			if i%3 == 0 {
				return cp.Vector{X: math.NaN(), Y: math.Inf(1)}, math.Inf(-1)
			}
			return cp.Vector{X: 500, Y: -500}, 40
		}},
		{"fast_constant", func(i int, r *rand.Rand) (cp.Vector, float64) {
			return cp.Vector{X: 0, Y: 5000}, 500
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := rand.New(rand.NewSource(7))
			var s Stretch
			for i := 0; i < 500; i++ {
				vel, w := c.vel(i, r)
				scale := s.Next(vel, w, i%50 == 49)
				if !inRange(scale) {
					t.Fatalf("frame %d: scale %v out of [%v,%v]", i, scale, StretchMin, StretchMax)
				}
			}
		})
	}
}

func TestStretchHeldPinch(t *testing.T) {
	var s Stretch
	s.Next(cp.Vector{Y: 80}, 0, false)
	got := s.Next(cp.Vector{Y: -60}, 0, true)
	if got != heldPinch {
		t.Fatalf("expected held pinch %v, got %v", heldPinch, got)
	}
	if s.Active() {
		t.Fatalf("holding should cancel a pending impact")
	}
}

func TestStretchImpactDecays(t *testing.T) {
	var s Stretch
	s.Next(cp.Vector{Y: 80}, 0, false)

	// falling object bounces off the floor
	first := s.Next(cp.Vector{Y: -5}, 0, false)
	if first.Y >= 1 || first.X <= 1 {
		t.Fatalf("expected vertical squash on floor impact, got %v", first)
	}
	if !s.Active() {
		t.Fatalf("expected impact to be active")
	}

	prev := first
	for i := 1; i < impactFrames; i++ {
		cur := s.Next(cp.Vector{Y: -5}, 0, false)
		if math.Abs(cur.Y-1) > math.Abs(prev.Y-1) {
			t.Fatalf("frame %d: squash grew from %v to %v", i, prev, cur)
		}
		prev = cur
	}
	if s.Active() {
		t.Fatalf("impact should have decayed after %d frames", impactFrames)
	}

	rest := s.Next(cp.Vector{}, 0, false)
	if rest.X != 1 || rest.Y != 1 {
		t.Fatalf("expected neutral scale at rest, got %v", rest)
	}
}

func TestStretchContinuous(t *testing.T) {
	var s Stretch
	var got cp.Vector
	// the first frame registers as an impact; let it decay
	for i := 0; i <= impactFrames+1; i++ {
		got = s.Next(cp.Vector{X: 200}, 0, false)
	}
	if got.X <= 1 || got.Y >= 1 {
		t.Fatalf("expected horizontal stretch while moving right, got %v", got)
	}

	var spin Stretch
	spin.Next(cp.Vector{}, 12, false)
	spun := spin.Next(cp.Vector{}, 12, false)
	if spun.X <= 1 || spun.Y <= 1 {
		t.Fatalf("expected spin to add stretch, got %v", spun)
	}
}

func TestImpactScaleFloor(t *testing.T) {
	got := impactScale(cp.Vector{X: 1}, 1e9)
	if math.Abs(got.X-impactFloor) > 1e-9 {
		t.Fatalf("expected squash floor %v along travel axis, got %v", impactFloor, got.X)
	}
	if math.Abs(got.Y-1/impactFloor) > 1e-9 {
		t.Fatalf("expected bulge %v across travel axis, got %v", 1/impactFloor, got.Y)
	}
}

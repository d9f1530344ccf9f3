package obj

import (
	"github.com/jakecoffman/cp"
)

// newCircleBody builds a solid disc. radius is in world units.
func newCircleBody(mass, radius float64) (*cp.Body, *cp.Shape) {
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	shape := cp.NewCircle(body, radius, cp.Vector{})
	return body, shape
}

// boxVertices returns the corners of a centered axis-aligned box, wound the
// way chipmunk expects.
func boxVertices(w, h float64) []cp.Vector {
	hw, hh := w/2, h/2
	return []cp.Vector{
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
		{X: -hw, Y: -hh},
	}
}

// newBoxBody builds a solid box. w and h are in world units.
func newBoxBody(mass, w, h float64) (*cp.Body, *cp.Shape) {
	body := cp.NewBody(mass, cp.MomentForBox(mass, w, h))
	verts := boxVertices(w, h)
	shape := cp.NewPolyShapeRaw(body, len(verts), verts, 0)
	return body, shape
}

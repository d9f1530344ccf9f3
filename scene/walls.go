package scene

import (
	"github.com/jakecoffman/cp"
)

const (
	categoryObject uint = 1 << iota
	categoryWall
)

// pickFilter matches object shapes only, so walls never win a hit-test.
var pickFilter = cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categoryObject)

// addBox closes the region p0-p1 with four thick static segments. The
// segments are pushed outward by their radius so the inner faces sit exactly
// on the box edges.
func addBox(space *cp.Space, p0, p1 cp.Vector, friction, elasticity float64) []*cp.Shape {
	if space == nil {
		return nil
	}
	corners := []cp.Vector{
		{X: p0.X - WallWidth, Y: p0.Y - WallWidth},
		{X: p1.X + WallWidth, Y: p0.Y - WallWidth},
		{X: p1.X + WallWidth, Y: p1.Y + WallWidth},
		{X: p0.X - WallWidth, Y: p1.Y + WallWidth},
	}
	shapes := make([]*cp.Shape, 0, len(corners))
	for i := range corners {
		shape := cp.NewSegment(space.StaticBody, corners[i], corners[(i+1)%len(corners)], WallWidth)
		shape.SetFriction(friction)
		shape.SetElasticity(elasticity)
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryWall, cp.ALL_CATEGORIES))
		space.AddShape(shape)
		shapes = append(shapes, shape)
	}
	return shapes
}

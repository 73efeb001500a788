package geometry

import (
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3 // A point on the plane
	Normal   core.Vec3 // Unit normal
	material core.MaterialIndex
}

// NewPlane creates a new plane; the normal is normalized
func NewPlane(point, normal core.Vec3, material core.MaterialIndex) (*Plane, error) {
	if normal.IsZero() {
		return nil, fmt.Errorf("%w: point %v", ErrZeroNormal, point)
	}
	return &Plane{
		Point:    point,
		Normal:   normal.Normalize(),
		material: material,
	}, nil
}

// Material returns the bound material index
func (p *Plane) Material() core.MaterialIndex {
	return p.material
}

// CalculateNormal returns the plane normal
func (p *Plane) CalculateNormal(_ core.Ray, _ core.Vec3) core.Vec3 {
	return p.Normal
}

// Intersect tests if a ray crosses the plane in front of its origin.
// A plane has no thickness, so entrance and exit coincide.
func (p *Plane) Intersect(ray core.Ray) (Intersection, bool) {
	denominator := ray.Direction().Dot(p.Normal)

	// Parallel rays never cross the plane
	if core.Abs(denominator) < 1e-8 {
		return Intersection{}, false
	}

	t := p.Point.Subtract(ray.Origin()).Dot(p.Normal) / denominator
	if t < 0 {
		return Intersection{}, false
	}

	return NewIntersection(p, t, t), true
}

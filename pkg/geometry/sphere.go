package geometry

import (
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   core.Real
	material core.MaterialIndex
}

// NewSphere creates a new sphere bound to the given material
func NewSphere(center core.Vec3, radius core.Real, material core.MaterialIndex) (*Sphere, error) {
	if !(radius > 0) || core.IsInf(radius) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}
	return &Sphere{
		Center:   center,
		Radius:   radius,
		material: material,
	}, nil
}

// Material returns the bound material index
func (s *Sphere) Material() core.MaterialIndex {
	return s.material
}

// CalculateNormal returns the outward normal; it does not depend on the ray
func (s *Sphere) CalculateNormal(_ core.Ray, hitPosition core.Vec3) core.Vec3 {
	return hitPosition.Subtract(s.Center).Normalize()
}

// Intersect tests the ray against the sphere.
//
// When the ray starts inside the sphere the near root is behind the origin;
// it is discarded and both distances report the far root.
func (s *Sphere) Intersect(ray core.Ray) (Intersection, bool) {
	// Vector from sphere center to ray origin
	v := ray.Origin().Subtract(s.Center)
	direction := ray.Direction()

	// Quadratic coefficients with the half-b form: at² + 2bt + c = 0
	a := direction.Dot(direction)
	b := v.Dot(direction)
	c := v.Dot(v) - s.Radius*s.Radius

	discriminant := b*b - a*c
	if discriminant < 0 {
		return Intersection{}, false
	}

	sqrtD := core.Sqrt(discriminant)
	invA := 1 / a

	exit := (-b + sqrtD) * invA
	if exit < 0 {
		// Sphere is entirely behind the ray
		return Intersection{}, false
	}

	entrance := (-b - sqrtD) * invA
	if entrance < 0 {
		entrance = exit
	}

	return NewIntersection(s, entrance, exit), true
}

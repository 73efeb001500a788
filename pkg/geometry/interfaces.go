package geometry

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

var (
	ErrInvalidRadius = errors.New("sphere radius must be positive and finite")
	ErrZeroNormal    = errors.New("plane normal must be non-zero")
	ErrNilChild      = errors.New("intersectable is nil")
)

// Geometry is a surface that knows its normal and the material it is bound to
type Geometry interface {
	// Material returns the index of the bound material in the scene's material table
	Material() core.MaterialIndex

	// CalculateNormal returns the unit outward normal at a point on the surface
	CalculateNormal(ray core.Ray, hitPosition core.Vec3) core.Vec3
}

// Intersectable is anything a ray can be tested against.
// Implementations must be safe to call concurrently once constructed.
type Intersectable interface {
	// Intersect returns the nearest intersection in front of the ray origin
	Intersect(ray core.Ray) (Intersection, bool)
}

// Primitive is a Geometry that can be intersected directly
type Primitive interface {
	Geometry
	Intersectable
}

// NoMaterialOverride marks an Intersection that uses its geometry's own material
const NoMaterialOverride core.MaterialIndex = -1

// Intersection describes a successful ray/geometry test
type Intersection struct {
	Geometry         Geometry           // Surface that was hit
	EntranceDistance core.Real          // Parameter along the ray of the nearest valid hit
	ExitDistance     core.Real          // Parameter where the ray leaves the surface
	MixAmount        core.Real          // Blend weight in [0,1] between overlapping surfaces
	MaterialOverride core.MaterialIndex // Per-instance material, or NoMaterialOverride
}

// NewIntersection creates an intersection with no blending and no material override
func NewIntersection(geometry Geometry, entrance, exit core.Real) Intersection {
	return Intersection{
		Geometry:         geometry,
		EntranceDistance: entrance,
		ExitDistance:     exit,
		MaterialOverride: NoMaterialOverride,
	}
}

// HasMaterialOverride reports whether the hit carries its own material index
func (i Intersection) HasMaterialOverride() bool {
	return i.MaterialOverride != NoMaterialOverride
}

// MaterialIndex returns the material to shade the hit with
func (i Intersection) MaterialIndex() core.MaterialIndex {
	if i.HasMaterialOverride() {
		return i.MaterialOverride
	}
	return i.Geometry.Material()
}

// Parent is implemented by aggregates that hold other intersectables
type Parent interface {
	Children() []Intersectable
}

// Walk visits every Geometry reachable from root, descending into aggregates
// in child order. It stops at the first error returned by fn. A nil root is
// an empty tree; a nil child, or a root holding a nil pointer, is ErrNilChild.
func Walk(root Intersectable, fn func(Geometry) error) error {
	if root == nil {
		return nil
	}
	return walk(root, fn)
}

func walk(node Intersectable, fn func(Geometry) error) error {
	if isNil(node) {
		return ErrNilChild
	}
	if g, ok := node.(Geometry); ok {
		if err := fn(g); err != nil {
			return err
		}
	}
	if p, ok := node.(Parent); ok {
		for i, child := range p.Children() {
			if err := walk(child, fn); err != nil {
				if errors.Is(err, ErrNilChild) {
					return fmt.Errorf("child %d: %w", i, err)
				}
				return err
			}
		}
	}
	return nil
}

// isNil reports whether i is nil or an interface holding a nil pointer
func isNil(i Intersectable) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

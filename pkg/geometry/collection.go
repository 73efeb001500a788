package geometry

import "github.com/df07/go-phong-raytracer/pkg/core"

// Collection aggregates intersectables and reports the closest hit among them.
// Children are tested with a linear scan; collections may be nested.
type Collection struct {
	children []Intersectable
}

// NewCollection creates a collection over the given children
func NewCollection(children ...Intersectable) *Collection {
	// Copy so later changes to the caller's slice cannot race with rendering
	childrenCopy := make([]Intersectable, len(children))
	copy(childrenCopy, children)
	return &Collection{children: childrenCopy}
}

// Children returns the child intersectables. Callers must not modify the slice.
func (c *Collection) Children() []Intersectable {
	return c.children
}

// Len returns the number of direct children
func (c *Collection) Len() int {
	return len(c.children)
}

// Intersect returns the child hit with the smallest entrance distance.
// Ties go to the child that comes first.
func (c *Collection) Intersect(ray core.Ray) (Intersection, bool) {
	var closest Intersection
	hitAnything := false

	for _, child := range c.children {
		hit, isHit := child.Intersect(ray)
		if !isHit {
			continue
		}
		if !hitAnything || hit.EntranceDistance < closest.EntranceDistance {
			closest = hit
			hitAnything = true
		}
	}

	return closest, hitAnything
}

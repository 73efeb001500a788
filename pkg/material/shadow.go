package material

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
)

// Occluded casts a shadow ray from point toward a light lightDistance away
// and reports whether anything blocks it. The ray starts slightly above the
// surface along normal so it does not hit the surface it leaves.
func Occluded(root geometry.Intersectable, point, normal, toLight core.Vec3, lightDistance core.Real) bool {
	if root == nil {
		return false
	}
	origin := point.Add(normal.Multiply(core.ShadowEpsilon))
	hit, isHit := root.Intersect(core.NewRay(origin, toLight))
	if !isHit {
		return false
	}
	return hit.EntranceDistance > 0 && hit.EntranceDistance < lightDistance
}

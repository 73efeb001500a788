package material

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
)

// Reflective is a Phong surface with an additional mirror term
type Reflective struct {
	Phong
	Reflectivity core.Color3 // Fraction of the mirrored color added per channel
}

// NewReflective creates a reflective material over a Phong base
func NewReflective(base *Phong, reflectivity core.Color3) *Reflective {
	return &Reflective{Phong: *base, Reflectivity: reflectivity}
}

// CalculateRenderingEquation implements Material. Each mirror bounce spends
// one unit of currentDepth; once it reaches zero the background is mirrored
// instead of tracing further.
func (r *Reflective) CalculateRenderingEquation(scene Scene, currentDepth int, _ geometry.Geometry, hitPosition, hitNormal, incomingDirection core.Vec3) core.Color3 {
	local := r.shade(scene, hitPosition, hitNormal, incomingDirection)
	if r.Reflectivity.IsBlack() {
		return local
	}

	toViewer := incomingDirection.Normalize().Negate()
	mirrored := core.NewRay(hitPosition.Add(hitNormal.Multiply(core.ShadowEpsilon)), toViewer.Reflect(hitNormal))

	var reflectedColor core.Color3
	if currentDepth <= 0 {
		reflectedColor = scene.Miss(mirrored)
	} else {
		reflectedColor = scene.Trace(mirrored, currentDepth-1)
	}

	return local.Add(r.Reflectivity.MultiplyColor(reflectedColor))
}

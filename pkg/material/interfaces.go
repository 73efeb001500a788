package material

import (
	"errors"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
)

var ErrInvalidShininess = errors.New("shininess must be a non-negative number")

// Scene is the read-only view of a scene that materials shade against.
// Declared here to avoid an import cycle with the scene package.
type Scene interface {
	Lights() []lights.Light
	Root() geometry.Intersectable

	// Trace returns the color seen along ray with depth bounces remaining
	Trace(ray core.Ray, depth int) core.Color3

	// Miss returns the background color for a ray that hits nothing
	Miss(ray core.Ray) core.Color3
}

// Material computes the light leaving a surface point toward the viewer.
// Implementations hold no mutable state and may be shared by many geometries.
type Material interface {
	// CalculateRenderingEquation returns the outgoing color at hitPosition.
	// hitNormal is unit length and faces the incoming ray; currentDepth is the
	// number of secondary bounces a recursive material may still spend.
	CalculateRenderingEquation(
		scene Scene,
		currentDepth int,
		hitGeometry geometry.Geometry,
		hitPosition core.Vec3,
		hitNormal core.Vec3,
		incomingDirection core.Vec3,
	) core.Color3
}

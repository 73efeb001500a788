package lights

import (
	"errors"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

var ErrZeroDirection = errors.New("directional light direction must be non-zero")

type LightType string

const (
	LightTypePoint       LightType = "point"
	LightTypeDirectional LightType = "directional"
)

// Light supplies the direction and radiance used for direct illumination.
// Lights are immutable once constructed.
type Light interface {
	Type() LightType

	// DirectionFrom returns the unit direction FROM point TO the light
	DirectionFrom(point core.Vec3) core.Vec3

	// ColorAt returns the radiance arriving at point, ignoring occlusion
	ColorAt(point core.Vec3) core.Color3

	// DistanceFrom returns how far along DirectionFrom the light sits.
	// Lights at infinity return +Inf.
	DistanceFrom(point core.Vec3) core.Real
}

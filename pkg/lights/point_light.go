package lights

import (
	"fmt"
	"strings"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// Falloff selects how a point light's intensity changes with distance
type Falloff int

const (
	// FalloffNone keeps the light's color at every distance
	FalloffNone Falloff = iota
	// FalloffInverseSquare divides the color by the squared distance
	FalloffInverseSquare
)

// String returns the name used in scene files
func (f Falloff) String() string {
	switch f {
	case FalloffNone:
		return "none"
	case FalloffInverseSquare:
		return "inverse-square"
	default:
		return fmt.Sprintf("Falloff(%d)", int(f))
	}
}

// ParseFalloff converts a scene-file name into a Falloff. Empty means none.
func ParseFalloff(name string) (Falloff, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "constant":
		return FalloffNone, nil
	case "inverse-square", "inversesquare", "quadratic":
		return FalloffInverseSquare, nil
	default:
		return FalloffNone, fmt.Errorf("unknown point light falloff %q", name)
	}
}

// PointLight emits from a single position in all directions
type PointLight struct {
	Position core.Vec3
	Color    core.Color3
	Falloff  Falloff
}

// NewPointLight creates a point light whose intensity does not fall off
func NewPointLight(position core.Vec3, color core.Color3) *PointLight {
	return &PointLight{Position: position, Color: color, Falloff: FalloffNone}
}

// NewPointLightWithFalloff creates a point light with the given attenuation model
func NewPointLightWithFalloff(position core.Vec3, color core.Color3, falloff Falloff) *PointLight {
	return &PointLight{Position: position, Color: color, Falloff: falloff}
}

// Type implements Light
func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// DirectionFrom returns the unit direction from point to the light.
// At the light's own position there is no direction and the zero vector is returned.
func (pl *PointLight) DirectionFrom(point core.Vec3) core.Vec3 {
	return pl.Position.Subtract(point).Normalize()
}

// ColorAt returns the light's color, attenuated according to Falloff
func (pl *PointLight) ColorAt(point core.Vec3) core.Color3 {
	if pl.Falloff != FalloffInverseSquare {
		return pl.Color
	}
	distanceSquared := pl.Position.Subtract(point).LengthSquared()
	if distanceSquared == 0 {
		// No emission at the light's own position
		return core.Black
	}
	return pl.Color.Multiply(1 / distanceSquared)
}

// DistanceFrom returns the distance from point to the light
func (pl *PointLight) DistanceFrom(point core.Vec3) core.Real {
	return pl.Position.Subtract(point).Length()
}

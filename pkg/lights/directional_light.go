package lights

import (
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// DirectionalLight is a light at infinity whose rays all travel along Direction
type DirectionalLight struct {
	Direction core.Vec3 // Unit direction the light travels in
	Color     core.Color3
	toLight   core.Vec3
}

// NewDirectionalLight creates a directional light. The direction is the way
// the light travels, e.g. (0,-1,0) for light shining straight down.
func NewDirectionalLight(direction core.Vec3, color core.Color3) (*DirectionalLight, error) {
	if direction.IsZero() {
		return nil, ErrZeroDirection
	}
	unit := direction.Normalize()
	if core.IsNaN(unit.X) || core.IsNaN(unit.Y) || core.IsNaN(unit.Z) {
		return nil, fmt.Errorf("%w: got %v", ErrZeroDirection, direction)
	}
	return &DirectionalLight{
		Direction: unit,
		Color:     color,
		toLight:   unit.Negate(),
	}, nil
}

// Type implements Light
func (dl *DirectionalLight) Type() LightType {
	return LightTypeDirectional
}

// DirectionFrom returns the same direction for every point
func (dl *DirectionalLight) DirectionFrom(core.Vec3) core.Vec3 {
	return dl.toLight
}

// ColorAt returns the constant light color
func (dl *DirectionalLight) ColorAt(core.Vec3) core.Color3 {
	return dl.Color
}

// DistanceFrom is infinite for a light at infinity
func (dl *DirectionalLight) DistanceFrom(core.Vec3) core.Real {
	return core.Inf()
}

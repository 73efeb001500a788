// Package missshader provides the colors returned for rays that hit nothing.
package missshader

import "github.com/df07/go-phong-raytracer/pkg/core"

// MissShader supplies a color for a ray that escaped the scene
type MissShader interface {
	Shade(ray core.Ray) core.Color3
}

// Constant returns the same color for every ray
type Constant struct {
	Color core.Color3
}

// NewConstant creates a constant miss shader
func NewConstant(color core.Color3) *Constant {
	return &Constant{Color: color}
}

// Shade implements MissShader
func (c *Constant) Shade(core.Ray) core.Color3 {
	return c.Color
}

// Gradient blends from Bottom to Top with the ray's vertical direction
type Gradient struct {
	Top    core.Color3
	Bottom core.Color3
}

// NewGradient creates a vertical gradient miss shader
func NewGradient(top, bottom core.Color3) *Gradient {
	return &Gradient{Top: top, Bottom: bottom}
}

// Shade implements MissShader
func (g *Gradient) Shade(ray core.Ray) core.Color3 {
	unitDirection := ray.Direction().Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1)

	return g.Bottom.Multiply(1 - t).Add(g.Top.Multiply(t))
}

package material

import (
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
)

// Phong shades with an ambient term plus per-light diffuse and specular terms
type Phong struct {
	Ambient   core.Color3
	Diffuse   core.Color3
	Specular  core.Color3
	Shininess core.Real
}

// NewPhong creates a new Phong material
func NewPhong(ambient, diffuse, specular core.Color3, shininess core.Real) (*Phong, error) {
	if !(shininess >= 0) || core.IsInf(shininess) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidShininess, shininess)
	}
	return &Phong{
		Ambient:   ambient,
		Diffuse:   diffuse,
		Specular:  specular,
		Shininess: shininess,
	}, nil
}

// NewDefault returns the black material stored at core.DefaultMaterial
func NewDefault() *Phong {
	return &Phong{}
}

// CalculateRenderingEquation implements Material. Phong does not recurse,
// so currentDepth is ignored.
func (p *Phong) CalculateRenderingEquation(scene Scene, _ int, _ geometry.Geometry, hitPosition, hitNormal, incomingDirection core.Vec3) core.Color3 {
	return p.shade(scene, hitPosition, hitNormal, incomingDirection)
}

// shade evaluates the local illumination model
func (p *Phong) shade(scene Scene, position, normal, incomingDirection core.Vec3) core.Color3 {
	result := p.Ambient
	toViewer := incomingDirection.Normalize().Negate()

	for _, light := range scene.Lights() {
		result = result.Add(p.directLight(scene, light, position, normal, toViewer))
	}

	return result
}

// directLight returns the diffuse and specular contribution of one light
func (p *Phong) directLight(scene Scene, light lights.Light, position, normal, toViewer core.Vec3) core.Color3 {
	toLight := light.DirectionFrom(position)

	// Light behind the surface contributes nothing
	nDotL := normal.Dot(toLight)
	if nDotL <= 0 {
		return core.Black
	}

	if Occluded(scene.Root(), position, normal, toLight, light.DistanceFrom(position)) {
		return core.Black
	}

	incident := light.ColorAt(position)
	result := p.Diffuse.MultiplyColor(incident).Multiply(nDotL)

	reflected := toLight.Reflect(normal)
	if rDotV := reflected.Dot(toViewer); rDotV > 0 {
		result = result.Add(p.Specular.MultiplyColor(incident).Multiply(core.Pow(rDotV, p.Shininess)))
	}

	return result
}

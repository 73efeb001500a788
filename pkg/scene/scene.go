package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/missshader"
)

const (
	// DefaultMaxDepth is the recursion budget used when a scene does not set one
	DefaultMaxDepth = 5

	// MaxDepthLimit is the largest recursion budget a scene or render may ask for
	MaxDepthLimit = 64
)

var (
	ErrNoMaterials   = errors.New("scene needs at least the default material")
	ErrNilMaterial   = errors.New("scene material is nil")
	ErrNilLight      = errors.New("scene light is nil")
	ErrNoMissShader  = errors.New("scene needs a miss shader")
	ErrMaterialIndex = errors.New("geometry references a material outside the material table")
	ErrMaxDepth      = errors.New("max depth out of range")
)

// Config holds everything needed to build a scene
type Config struct {
	Materials  []material.Material    // Material table; index 0 is the fallback material
	Lights     []lights.Light         // Lights consulted during shading
	MissShader missshader.MissShader  // Color for rays that hit nothing
	Root       geometry.Intersectable // Geometry root; nil means an empty scene
	MaxDepth   int                    // Secondary bounce budget for recursive materials
}

// Scene is an immutable, validated scene. Once built it is safe to cast
// rays from any number of goroutines without synchronization.
type Scene struct {
	materials  []material.Material
	lights     []lights.Light
	missShader missshader.MissShader
	root       geometry.Intersectable
	maxDepth   int
}

var _ material.Scene = (*Scene)(nil)

// New validates the configuration and builds a scene. Every check that could
// otherwise fail mid-render happens here.
func New(config Config) (*Scene, error) {
	if len(config.Materials) == 0 {
		return nil, ErrNoMaterials
	}
	for i, m := range config.Materials {
		if m == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilMaterial, i)
		}
	}
	for i, l := range config.Lights {
		if l == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilLight, i)
		}
	}
	if config.MissShader == nil {
		return nil, ErrNoMissShader
	}
	if config.MaxDepth < 0 || config.MaxDepth > MaxDepthLimit {
		return nil, fmt.Errorf("%w: got %d, want 0 to %d", ErrMaxDepth, config.MaxDepth, MaxDepthLimit)
	}

	root := config.Root
	if root == nil {
		root = geometry.NewCollection()
	}

	materialCount := core.MaterialIndex(len(config.Materials))
	err := geometry.Walk(root, func(g geometry.Geometry) error {
		if idx := g.Material(); idx < 0 || idx >= materialCount {
			return fmt.Errorf("%w: index %d with %d materials", ErrMaterialIndex, idx, materialCount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Copy the tables so the caller cannot mutate them during a render
	materials := make([]material.Material, len(config.Materials))
	copy(materials, config.Materials)
	sceneLights := make([]lights.Light, len(config.Lights))
	copy(sceneLights, config.Lights)

	return &Scene{
		materials:  materials,
		lights:     sceneLights,
		missShader: config.MissShader,
		root:       root,
		maxDepth:   config.MaxDepth,
	}, nil
}

// Lights returns the scene lights. Callers must not modify the slice.
func (s *Scene) Lights() []lights.Light {
	return s.lights
}

// Root returns the root intersectable
func (s *Scene) Root() geometry.Intersectable {
	return s.root
}

// MaxDepth returns the bounce budget given to primary rays
func (s *Scene) MaxDepth() int {
	return s.maxDepth
}

// MaterialCount returns the size of the material table
func (s *Scene) MaterialCount() int {
	return len(s.materials)
}

// Material resolves a material index. Indices outside the table resolve to
// the fallback material so shading never fails.
func (s *Scene) Material(index core.MaterialIndex) material.Material {
	if index < 0 || int(index) >= len(s.materials) {
		return s.materials[core.DefaultMaterial]
	}
	return s.materials[index]
}

// CastRayColor returns the color seen along ray
func (s *Scene) CastRayColor(ray core.Ray) core.Color3 {
	return s.Trace(ray, s.maxDepth)
}

// CastRayDistance returns the entrance distance of the nearest hit without shading it
func (s *Scene) CastRayDistance(ray core.Ray) (core.Real, bool) {
	hit, isHit := s.root.Intersect(ray)
	if !isHit {
		return 0, false
	}
	return hit.EntranceDistance, true
}

// Trace returns the color seen along ray with depth bounces left for recursive materials
func (s *Scene) Trace(ray core.Ray, depth int) core.Color3 {
	hit, isHit := s.root.Intersect(ray)
	if !isHit {
		return s.missShader.Shade(ray)
	}

	position := ray.At(hit.EntranceDistance)
	// Shade the side of the surface the ray arrived on
	normal := hit.Geometry.CalculateNormal(ray, position).FaceForward(ray.Direction())

	mat := s.Material(hit.MaterialIndex())
	return mat.CalculateRenderingEquation(s, depth, hit.Geometry, position, normal, ray.Direction())
}

// Miss returns the miss shader color for ray
func (s *Scene) Miss(ray core.Ray) core.Color3 {
	return s.missShader.Shade(ray)
}

// GetPrimitiveCount returns the number of geometries reachable from the root
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	_ = geometry.Walk(s.root, func(geometry.Geometry) error {
		count++
		return nil
	})
	return count
}

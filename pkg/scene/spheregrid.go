package scene

import (
	"math"

	"github.com/df07/go-phong-raytracer/pkg/camera"
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/missshader"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Color3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewColor3(core.Real(r), core.Real(g), core.Real(blue)).Clamp(0, 1)
}

// NewSphereGridScene creates a gridSize x gridSize grid of colored spheres.
// Each row is its own collection so the scene exercises nested aggregates.
func NewSphereGridScene(gridSize int, cameraOverrides ...camera.Config) (*Scene, *camera.Perspective, error) {
	if gridSize < 2 {
		gridSize = 2
	}

	defaultCameraConfig := camera.Config{
		Position:    core.NewVec3(4.5, 6, 18), // Back and above the grid
		LookAt:      core.NewVec3(4.5, 0.8, 4.5),
		Up:          core.NewVec3(0, 1, 0),
		FieldOfView: 55,
		Width:       800,
		Height:      450,
		Subpixels:   2,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = camera.MergeConfig(defaultCameraConfig, cameraOverrides[0])
	}

	cam, err := camera.NewPerspective(cameraConfig)
	if err != nil {
		return nil, nil, err
	}

	groundMaterial, err := material.NewPhong(core.Grey(0.05), core.Grey(0.5), core.Black, 1)
	if err != nil {
		return nil, nil, err
	}
	materials := []material.Material{material.NewDefault(), groundMaterial}

	groundPlane, err := geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 1)
	if err != nil {
		return nil, nil, err
	}

	// Fit the grid into roughly 9x9 units regardless of its size
	targetArea := 9.0
	spacing := targetArea / float64(gridSize-1)
	sphereRadius := math.Max(0.02, math.Min(0.35, spacing*0.35))

	// Hue varies across X, chroma across Z
	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25

	rows := make([]geometry.Intersectable, 0, gridSize)
	for i := 0; i < gridSize; i++ {
		row := make([]geometry.Intersectable, 0, gridSize)
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)
			color := oklchToRGB(lightness, chroma, hue)

			base, err := material.NewPhong(color.Multiply(0.1), color, core.Grey(0.6), core.Real(20+40*((i+j)%3)))
			if err != nil {
				return nil, nil, err
			}
			index := core.MaterialIndex(len(materials))
			materials = append(materials, material.NewReflective(base, core.Grey(0.15)))

			sphere, err := geometry.NewSphere(core.NewVec3(core.Real(x), core.Real(sphereRadius), core.Real(z)), core.Real(sphereRadius), index)
			if err != nil {
				return nil, nil, err
			}
			row = append(row, sphere)
		}
		rows = append(rows, geometry.NewCollection(row...))
	}

	sun, err := lights.NewDirectionalLight(core.NewVec3(-0.5, -1, -0.5), core.NewColor3(0.9, 0.88, 0.85))
	if err != nil {
		return nil, nil, err
	}

	s, err := New(Config{
		Materials:  materials,
		Lights:     []lights.Light{sun},
		MissShader: missshader.NewGradient(core.NewColor3(0.5, 0.7, 1.0), core.Grey(1)),
		Root:       geometry.NewCollection(groundPlane, geometry.NewCollection(rows...)),
		MaxDepth:   DefaultMaxDepth,
	})
	if err != nil {
		return nil, nil, err
	}

	return s, cam, nil
}

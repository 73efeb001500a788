package scene

import (
	"github.com/df07/go-phong-raytracer/pkg/camera"
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/missshader"
)

// NewDefaultScene creates three spheres on a ground plane under a sky gradient
func NewDefaultScene(cameraOverrides ...camera.Config) (*Scene, *camera.Perspective, error) {
	defaultCameraConfig := camera.Config{
		Position:    core.NewVec3(0, 0.75, 2), // Slightly above and behind the spheres
		LookAt:      core.NewVec3(0, 0.5, -1), // Center sphere
		Up:          core.NewVec3(0, 1, 0),
		FieldOfView: 60,
		Width:       400,
		Height:      225,
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

	const (
		ground = iota + 1
		red
		silver
		gold
	)

	groundMaterial, err := material.NewPhong(core.Grey(0.05), core.NewColor3(0.48, 0.48, 0.0), core.Black, 1)
	if err != nil {
		return nil, nil, err
	}
	redMaterial, err := material.NewPhong(core.NewColor3(0.07, 0.02, 0.02), core.NewColor3(0.65, 0.25, 0.2), core.Grey(0.5), 40)
	if err != nil {
		return nil, nil, err
	}
	silverBase, err := material.NewPhong(core.Grey(0.02), core.Grey(0.2), core.Grey(0.8), 120)
	if err != nil {
		return nil, nil, err
	}
	goldBase, err := material.NewPhong(core.NewColor3(0.04, 0.03, 0.01), core.NewColor3(0.5, 0.35, 0.1), core.NewColor3(0.8, 0.6, 0.2), 60)
	if err != nil {
		return nil, nil, err
	}

	materials := []material.Material{
		material.NewDefault(),
		groundMaterial,
		redMaterial,
		material.NewReflective(silverBase, core.Grey(0.7)),
		material.NewReflective(goldBase, core.NewColor3(0.5, 0.4, 0.2)),
	}

	groundPlane, err := geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), ground)
	if err != nil {
		return nil, nil, err
	}
	sphereCenter, err := geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, red)
	if err != nil {
		return nil, nil, err
	}
	sphereLeft, err := geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver)
	if err != nil {
		return nil, nil, err
	}
	sphereRight, err := geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, gold)
	if err != nil {
		return nil, nil, err
	}

	sun, err := lights.NewDirectionalLight(core.NewVec3(-1, -2, -1), core.NewColor3(0.8, 0.78, 0.75))
	if err != nil {
		return nil, nil, err
	}
	fill := lights.NewPointLightWithFalloff(core.NewVec3(2, 3, 2), core.Grey(6), lights.FalloffInverseSquare)

	s, err := New(Config{
		Materials: materials,
		Lights:    []lights.Light{sun, fill},
		MissShader: missshader.NewGradient(
			core.NewColor3(0.5, 0.7, 1.0), // Blue sky
			core.NewColor3(1.0, 1.0, 1.0), // White horizon
		),
		Root:     geometry.NewCollection(groundPlane, sphereCenter, sphereLeft, sphereRight),
		MaxDepth: DefaultMaxDepth,
	})
	if err != nil {
		return nil, nil, err
	}

	return s, cam, nil
}

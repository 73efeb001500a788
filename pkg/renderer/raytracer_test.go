package renderer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-phong-raytracer/pkg/camera"
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/missshader"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

// depthRecordingScene returns a fixed color and records trace depths
type depthRecordingScene struct {
	mu     sync.Mutex
	depths map[int]int
}

func (s *depthRecordingScene) record(depth int) core.Color3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depths[depth]++
	return core.Grey(1)
}

func (s *depthRecordingScene) CastRayColor(core.Ray) core.Color3 { return s.record(-1) }
func (s *depthRecordingScene) CastRayDistance(core.Ray) (core.Real, bool) {
	return 0, false
}
func (s *depthRecordingScene) Trace(_ core.Ray, depth int) core.Color3 { return s.record(depth) }

func newTestCamera(t *testing.T, width, height, subpixels int) *camera.Perspective {
	t.Helper()
	cam, err := camera.NewPerspective(camera.Config{
		Position:    core.NewVec3(0, 0, 5),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		FieldOfView: 60,
		Width:       width,
		Height:      height,
		Subpixels:   subpixels,
	})
	require.NoError(t, err)
	return cam
}

func newSphereScene(t *testing.T) *scene.Scene {
	t.Helper()
	sphere, err := geometry.NewSphere(core.NewVec3(0, 0, 0), 1, 1)
	require.NoError(t, err)
	phong, err := material.NewPhong(core.Grey(0.1), core.NewColor3(0.8, 0.2, 0.2), core.Grey(0.5), 20)
	require.NoError(t, err)

	s, err := scene.New(scene.Config{
		Materials:  []material.Material{material.NewDefault(), phong},
		Lights:     []lights.Light{lights.NewPointLight(core.NewVec3(2, 2, 5), core.Grey(1))},
		MissShader: missshader.NewConstant(core.Grey(0.2)),
		Root:       geometry.NewCollection(sphere),
		MaxDepth:   scene.DefaultMaxDepth,
	})
	require.NoError(t, err)
	return s
}

func render(t *testing.T, s Scene, cam Camera, options Options) *Result {
	t.Helper()
	rt, err := NewRaytracer(s, cam, options)
	require.NoError(t, err)
	result, err := rt.Render(context.Background())
	require.NoError(t, err)
	return result
}

func TestRaytracer_EmptySceneIsMissColor(t *testing.T) {
	s, err := scene.New(scene.Config{
		Materials:  []material.Material{material.NewDefault()},
		MissShader: missshader.NewConstant(core.Grey(0.2)),
	})
	require.NoError(t, err)

	result := render(t, s, newTestCamera(t, 5, 3, 2), Options{TileSize: 2})

	img, ok := result.Image.(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, color.RGBA{51, 51, 51, 255}, img.RGBAAt(x, y))
		}
	}

	assert.Equal(t, 15, result.Stats.TotalPixels)
	assert.Equal(t, 60, result.Stats.TotalRays)
	assert.Equal(t, 6, result.Stats.Tiles)
}

func TestRaytracer_DeterministicAcrossWorkerCounts(t *testing.T) {
	s := newSphereScene(t)
	cam := newTestCamera(t, 24, 16, 2)

	single := render(t, s, cam, Options{Workers: 1, TileSize: 5})
	parallel := render(t, s, cam, Options{Workers: 8, TileSize: 3})

	assert.Equal(t, single.Image.(*image.RGBA).Pix, parallel.Image.(*image.RGBA).Pix)
}

func TestRaytracer_ColorMatchesScene(t *testing.T) {
	s := newSphereScene(t)
	cam := newTestCamera(t, 9, 9, 1)

	result := render(t, s, cam, Options{})
	img := result.Image.(*image.RGBA)

	// Center pixel hits the sphere, the corner sees the background
	expected := colorToRGBA(s.CastRayColor(cam.Ray(4, 4, 0, 0)), 1)
	assert.Equal(t, expected, img.RGBAAt(4, 4))
	assert.Equal(t, color.RGBA{51, 51, 51, 255}, img.RGBAAt(0, 0))
}

func TestRaytracer_DepthMode(t *testing.T) {
	s := newSphereScene(t)
	cam := newTestCamera(t, 9, 9, 1)

	result := render(t, s, cam, Options{Mode: ModeDepth})

	img, ok := result.Image.(*image.Gray16)
	require.True(t, ok)

	// The sphere's nearest point is straight ahead
	assert.Equal(t, color.Gray16{Y: 0xffff}, img.Gray16At(4, 4))
	assert.Equal(t, color.Gray16{Y: 0}, img.Gray16At(0, 0))

	edge := img.Gray16At(4, 3).Y
	assert.Less(t, edge, uint16(0xffff))
	assert.Greater(t, edge, uint16(0))

	assert.Positive(t, result.Stats.HitRays)
	assert.Less(t, result.Stats.HitRays, result.Stats.TotalRays)
}

func TestRaytracer_MaxDepthOverride(t *testing.T) {
	cam := newTestCamera(t, 2, 2, 1)

	tests := []struct {
		maxDepth int
		expected int
	}{
		{-1, -1},
		{0, 0},
		{3, 3},
	}

	for _, tt := range tests {
		s := &depthRecordingScene{depths: map[int]int{}}
		render(t, s, cam, Options{MaxDepth: tt.maxDepth})
		assert.Equal(t, map[int]int{tt.expected: 4}, s.depths, "max depth %d", tt.maxDepth)
	}
}

func TestRaytracer_GammaCorrection(t *testing.T) {
	assert.Equal(t, color.RGBA{128, 128, 128, 255}, colorToRGBA(core.Grey(0.5), 1))
	assert.Equal(t, color.RGBA{186, 186, 186, 255}, colorToRGBA(core.Grey(0.5), 2.2))
	assert.Equal(t, color.RGBA{255, 0, 255, 255}, colorToRGBA(core.NewColor3(4, -1, 1), 1))
}

func TestRaytracer_Cancelled(t *testing.T) {
	var logs bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rt, err := NewRaytracer(newSphereScene(t), newTestCamera(t, 16, 16, 1), Options{
		TileSize: 4,
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)

	result, err := rt.Render(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Less(t, result.Stats.Tiles, 16)
	assert.Contains(t, logs.String(), "render stopped early")
}

func TestNewRaytracer_Options(t *testing.T) {
	rt, err := NewRaytracer(newSphereScene(t), newTestCamera(t, 2, 2, 1), Options{})
	require.NoError(t, err)
	assert.Equal(t, 32, rt.Options().TileSize)
	assert.Equal(t, core.Real(1), rt.Options().Gamma)
	assert.Equal(t, ModeColor, rt.Options().Mode)

	_, err = NewRaytracer(newSphereScene(t), newTestCamera(t, 2, 2, 1), Options{Mode: "normals"})
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = NewRaytracer(newSphereScene(t), newTestCamera(t, 2, 2, 1), Options{MaxDepth: scene.MaxDepthLimit + 1})
	assert.ErrorIs(t, err, ErrMaxDepth)
}

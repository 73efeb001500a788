package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

const tolerance = 1e-6

func testConfig() Config {
	return Config{
		Position:    core.NewVec3(0, 0, 5),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		FieldOfView: 90,
		Width:       3,
		Height:      3,
		Subpixels:   1,
	}
}

func TestNewPerspective_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -2 }},
		{"negative subpixels", func(c *Config) { c.Subpixels = -1 }},
		{"too many subpixels", func(c *Config) { c.Subpixels = MaxSubpixels + 1 }},
		{"zero fov", func(c *Config) { c.FieldOfView = 0 }},
		{"straight fov", func(c *Config) { c.FieldOfView = 180 }},
		{"lookAt at eye", func(c *Config) { c.LookAt = c.Position }},
		{"up parallel to view", func(c *Config) { c.Up = core.NewVec3(0, 0, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig()
			tt.modify(&config)
			_, err := NewPerspective(config)
			assert.ErrorIs(t, err, ErrInvalidCamera)
		})
	}
}

func TestPerspective_CenterPixelLooksForward(t *testing.T) {
	cam, err := NewPerspective(testConfig())
	require.NoError(t, err)

	ray := cam.Ray(1, 1, 0, 0)
	assert.Equal(t, core.NewVec3(0, 0, 5), ray.Origin())
	assert.InDelta(t, 0.0, float64(ray.Direction().X), tolerance)
	assert.InDelta(t, 0.0, float64(ray.Direction().Y), tolerance)
	assert.InDelta(t, -1.0, float64(ray.Direction().Z), tolerance)
}

func TestPerspective_ImageOrientation(t *testing.T) {
	cam, err := NewPerspective(testConfig())
	require.NoError(t, err)

	topLeft := cam.Ray(0, 0, 0, 0).Direction()
	bottomRight := cam.Ray(2, 2, 0, 0).Direction()

	// x grows to the right, y grows downward
	assert.Less(t, topLeft.X, core.Real(0))
	assert.Greater(t, topLeft.Y, core.Real(0))
	assert.Greater(t, bottomRight.X, core.Real(0))
	assert.Less(t, bottomRight.Y, core.Real(0))

	// Symmetric about the view axis
	assert.InDelta(t, float64(-topLeft.X), float64(bottomRight.X), tolerance)
	assert.InDelta(t, float64(-topLeft.Y), float64(bottomRight.Y), tolerance)
	assert.InDelta(t, 1.0, float64(topLeft.Length()), tolerance)
}

func TestPerspective_FieldOfView(t *testing.T) {
	config := testConfig()
	config.Width = 2
	config.Height = 1
	cam, err := NewPerspective(config)
	require.NoError(t, err)

	// With a 90° fov the image plane at distance 1 spans x in [-1, 1];
	// the right pixel's center sits at x = 0.5
	dir := cam.Ray(1, 0, 0, 0).Direction()
	assert.InDelta(t, 0.5, float64(dir.X/-dir.Z), tolerance)
}

func TestPerspective_Subpixels(t *testing.T) {
	config := testConfig()
	config.Subpixels = 2
	cam, err := NewPerspective(config)
	require.NoError(t, err)

	rays := cam.PixelRays(1, 1, nil)
	require.Len(t, rays, 4)

	// Subpixel rays of the center pixel surround the view axis
	var sum core.Vec3
	for _, r := range rays {
		sum = sum.Add(r.Direction())
		assert.NotEqual(t, core.Real(0), r.Direction().X)
	}
	assert.InDelta(t, 0.0, float64(sum.X), tolerance)
	assert.InDelta(t, 0.0, float64(sum.Y), tolerance)
}

func TestPerspective_DefaultsAndCopies(t *testing.T) {
	config := testConfig()
	config.Subpixels = 0
	cam, err := NewPerspective(config)
	require.NoError(t, err)
	assert.Equal(t, 1, cam.Subpixels())

	resized, err := cam.WithResolution(64, 32)
	require.NoError(t, err)
	assert.Equal(t, 64, resized.Width())
	assert.Equal(t, 32, resized.Height())
	assert.Equal(t, 3, cam.Width())

	finer, err := cam.WithSubpixels(4)
	require.NoError(t, err)
	assert.Equal(t, 4, finer.Subpixels())
}

func TestMergeConfig(t *testing.T) {
	base := testConfig()
	merged := MergeConfig(base, Config{Width: 640, FieldOfView: 45})

	assert.Equal(t, 640, merged.Width)
	assert.Equal(t, base.Height, merged.Height)
	assert.Equal(t, core.Real(45), merged.FieldOfView)
	assert.Equal(t, base.Position, merged.Position)
	assert.Equal(t, base, MergeConfig(base, Config{}))
}

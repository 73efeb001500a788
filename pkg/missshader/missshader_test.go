package missshader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

func TestConstant_IgnoresRay(t *testing.T) {
	shader := NewConstant(core.Grey(0.2))
	for _, dir := range []core.Vec3{core.NewVec3(0, 0, -1), core.NewVec3(1, 2, 3), core.NewVec3(0, -1, 0)} {
		assert.Equal(t, core.Grey(0.2), shader.Shade(core.NewRay(core.Vec3{}, dir)))
	}
}

func TestGradient_Shade(t *testing.T) {
	shader := NewGradient(core.NewColor3(0, 0, 1), core.NewColor3(1, 1, 1))

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Color3
	}{
		{"straight up", core.NewVec3(0, 5, 0), core.NewColor3(0, 0, 1)},
		{"straight down", core.NewVec3(0, -1, 0), core.NewColor3(1, 1, 1)},
		{"horizon", core.NewVec3(1, 0, 0), core.NewColor3(0.5, 0.5, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := shader.Shade(core.NewRay(core.Vec3{}, tt.direction))
			assert.InDelta(t, float64(tt.expected.R), float64(c.R), 1e-6)
			assert.InDelta(t, float64(tt.expected.G), float64(c.G), 1e-6)
			assert.InDelta(t, float64(tt.expected.B), float64(c.B), 1e-6)
		})
	}
}

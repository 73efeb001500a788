// Package camera turns image-plane coordinates into primary rays.
package camera

import (
	"errors"
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

var ErrInvalidCamera = errors.New("invalid camera")

// MaxSubpixels is the largest subpixel grid edge a camera accepts
const MaxSubpixels = 16

// Config describes a pinhole perspective camera
type Config struct {
	Position    core.Vec3 // Eye position
	LookAt      core.Vec3 // Point the camera looks at
	Up          core.Vec3 // Approximate up direction
	FieldOfView core.Real // Horizontal field of view in degrees
	Width       int       // Image width in pixels
	Height      int       // Image height in pixels
	Subpixels   int       // Subpixel grid size per axis (1 = one ray through each pixel center)
}

// Perspective generates rays through a regular grid of pixels and subpixels
type Perspective struct {
	config  Config
	forward core.Vec3 // Unit view direction
	du      core.Vec3 // Step of one pixel to the right
	dv      core.Vec3 // Step of one pixel down
}

// NewPerspective validates the configuration and precomputes the pixel basis
func NewPerspective(config Config) (*Perspective, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: screen size %dx%d", ErrInvalidCamera, config.Width, config.Height)
	}
	if config.Subpixels == 0 {
		config.Subpixels = 1
	}
	if config.Subpixels < 0 || config.Subpixels > MaxSubpixels {
		return nil, fmt.Errorf("%w: subpixel count %d must be in [1, %d]", ErrInvalidCamera, config.Subpixels, MaxSubpixels)
	}
	if !(config.FieldOfView > 0 && config.FieldOfView < 180) {
		return nil, fmt.Errorf("%w: field of view %v must be in (0, 180) degrees", ErrInvalidCamera, config.FieldOfView)
	}

	view := config.LookAt.Subtract(config.Position)
	if view.IsZero() {
		return nil, fmt.Errorf("%w: position and lookAt coincide at %v", ErrInvalidCamera, config.Position)
	}
	forward := view.Normalize()

	right := config.Up.Cross(forward).Negate()
	if right.LengthSquared() < 1e-12 {
		return nil, fmt.Errorf("%w: up %v is parallel to the view direction", ErrInvalidCamera, config.Up)
	}
	right = right.Normalize()
	down := right.Cross(forward).Negate().Normalize()

	// Square pixels: both axes share the horizontal pixel pitch
	halfWidth := core.Tan(core.DegreesToRadians(config.FieldOfView) / 2)
	pitch := 2 * halfWidth / core.Real(config.Width)

	return &Perspective{
		config:  config,
		forward: forward,
		du:      right.Multiply(pitch),
		dv:      down.Multiply(pitch),
	}, nil
}

// Config returns the camera configuration
func (c *Perspective) Config() Config {
	return c.config
}

// Width returns the image width in pixels
func (c *Perspective) Width() int { return c.config.Width }

// Height returns the image height in pixels
func (c *Perspective) Height() int { return c.config.Height }

// Subpixels returns the subpixel grid size per axis
func (c *Perspective) Subpixels() int { return c.config.Subpixels }

// Ray returns the normalized ray through subpixel (sx, sy) of pixel (x, y).
// Pixel (0, 0) is the top-left of the image.
func (c *Perspective) Ray(x, y, sx, sy int) core.Ray {
	n := core.Real(c.config.Subpixels)
	offsetX := core.Real(x) - 0.5*core.Real(c.config.Width) + (core.Real(sx)+0.5)/n
	offsetY := core.Real(y) - 0.5*core.Real(c.config.Height) + (core.Real(sy)+0.5)/n

	direction := c.forward.
		Add(c.du.Multiply(offsetX)).
		Add(c.dv.Multiply(offsetY)).
		Normalize()

	return core.NewRay(c.config.Position, direction)
}

// PixelRays appends one ray per subpixel of pixel (x, y) to buf and returns it
func (c *Perspective) PixelRays(x, y int, buf []core.Ray) []core.Ray {
	for sy := 0; sy < c.config.Subpixels; sy++ {
		for sx := 0; sx < c.config.Subpixels; sx++ {
			buf = append(buf, c.Ray(x, y, sx, sy))
		}
	}
	return buf
}

// WithResolution returns a copy of the camera rendering at a different size
func (c *Perspective) WithResolution(width, height int) (*Perspective, error) {
	config := c.config
	config.Width = width
	config.Height = height
	return NewPerspective(config)
}

// WithSubpixels returns a copy of the camera with a different subpixel grid
func (c *Perspective) WithSubpixels(subpixels int) (*Perspective, error) {
	config := c.config
	config.Subpixels = subpixels
	return NewPerspective(config)
}

// MergeConfig returns base with every non-zero field of override applied
func MergeConfig(base, override Config) Config {
	result := base
	if !override.Position.IsZero() {
		result.Position = override.Position
	}
	if !override.LookAt.IsZero() {
		result.LookAt = override.LookAt
	}
	if !override.Up.IsZero() {
		result.Up = override.Up
	}
	if override.FieldOfView > 0 {
		result.FieldOfView = override.FieldOfView
	}
	if override.Width > 0 {
		result.Width = override.Width
	}
	if override.Height > 0 {
		result.Height = override.Height
	}
	if override.Subpixels > 0 {
		result.Subpixels = override.Subpixels
	}
	return result
}

package renderer

import (
	"image"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels int           // Pixels rendered
	TotalRays   int           // Primary rays cast
	HitRays     int           // Primary rays that hit geometry (depth mode only)
	Tiles       int           // Tiles completed
	Workers     int           // Worker count used
	Duration    time.Duration // Wall clock time of the whole render
}

// Merge adds the counters of other to s
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.TotalRays += other.TotalRays
	s.HitRays += other.HitRays
	s.Tiles += other.Tiles
}

// RaysPerPixel returns the average number of primary rays per pixel
func (s RenderStats) RaysPerPixel() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalRays) / float64(s.TotalPixels)
}

// PixelStats accumulates the subpixel samples of a single pixel
type PixelStats struct {
	ColorAccum  core.Color3 // Sum of sample colors
	SampleCount int         // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Color3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the average color for this pixel
func (ps *PixelStats) GetColor() core.Color3 {
	if ps.SampleCount == 0 {
		return core.Black
	}
	return ps.ColorAccum.Multiply(1.0 / core.Real(ps.SampleCount))
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of img in [0,1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := core.NewColor3(core.Real(r), core.Real(g), core.Real(b)).Multiply(1.0 / 0xffff)
			total += float64(c.Luminance())
		}
	}

	return total / float64(pixels)
}

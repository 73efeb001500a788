package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// TileRenderer renders the pixels of individual tiles
type TileRenderer struct {
	scene   Scene
	camera  Camera
	options Options
}

// NewTileRenderer creates a new tile renderer
func NewTileRenderer(scene Scene, camera Camera, options Options) *TileRenderer {
	return &TileRenderer{scene: scene, camera: camera, options: options}
}

// castColor shades one primary ray, honoring a bounce budget override
func (tr *TileRenderer) castColor(ray core.Ray) core.Color3 {
	if tr.options.MaxDepth >= 0 {
		return tr.scene.Trace(ray, tr.options.MaxDepth)
	}
	return tr.scene.CastRayColor(ray)
}

// RenderColorBounds shades the pixels within bounds into img. Each pixel is the
// average of its subpixel rays.
func (tr *TileRenderer) RenderColorBounds(bounds image.Rectangle, img *image.RGBA) RenderStats {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy(), Tiles: 1}
	var rays []core.Ray

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rays = tr.camera.PixelRays(x, y, rays[:0])

			var ps PixelStats
			for _, ray := range rays {
				ps.AddSample(tr.castColor(ray))
			}
			stats.TotalRays += len(rays)

			img.SetRGBA(x, y, colorToRGBA(ps.GetColor(), tr.options.Gamma))
		}
	}

	return stats
}

// RenderDepthBounds records the mean hit distance of each pixel within bounds
func (tr *TileRenderer) RenderDepthBounds(bounds image.Rectangle, depths *depthBuffer) RenderStats {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy(), Tiles: 1}
	var rays []core.Ray

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rays = tr.camera.PixelRays(x, y, rays[:0])

			var sum core.Real
			hits := 0
			for _, ray := range rays {
				if distance, isHit := tr.scene.CastRayDistance(ray); isHit {
					sum += distance
					hits++
				}
			}
			stats.TotalRays += len(rays)
			stats.HitRays += hits

			if hits > 0 {
				depths.set(x, y, float64(sum)/float64(hits))
			}
		}
	}

	return stats
}

// colorToRGBA converts a linear color to 8-bit RGBA with gamma correction and clamping
func colorToRGBA(c core.Color3, gamma core.Real) color.RGBA {
	c = c.Clamp(0, 1).GammaCorrect(gamma)

	return color.RGBA{
		R: uint8(255*c.R + 0.5),
		G: uint8(255*c.G + 0.5),
		B: uint8(255*c.B + 0.5),
		A: 255,
	}
}

// depthBuffer holds one distance per pixel; NaN marks a miss
type depthBuffer struct {
	width, height int
	values        []float64
}

func newDepthBuffer(width, height int) *depthBuffer {
	values := make([]float64, width*height)
	for i := range values {
		values[i] = math.NaN()
	}
	return &depthBuffer{width: width, height: height, values: values}
}

func (d *depthBuffer) set(x, y int, distance float64) {
	d.values[y*d.width+x] = distance
}

// toGray16 maps hit distances linearly onto grey levels, nearest hit white
// and farthest hit darkest non-black. Misses are black.
func (d *depthBuffer) toGray16() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, d.width, d.height))

	near, far := math.Inf(1), math.Inf(-1)
	for _, v := range d.values {
		if !math.IsNaN(v) {
			near = math.Min(near, v)
			far = math.Max(far, v)
		}
	}

	const darkest = 0x1000 // Keeps the farthest hit distinguishable from a miss
	span := far - near
	for i, v := range d.values {
		if math.IsNaN(v) {
			continue
		}
		level := 1.0
		if span > 0 {
			level = 1 - (v-near)/span
		}
		img.Pix[2*i], img.Pix[2*i+1] = gray16Bytes(uint16(darkest + level*(0xffff-darkest)))
	}

	return img
}

func gray16Bytes(v uint16) (byte, byte) {
	return byte(v >> 8), byte(v)
}
